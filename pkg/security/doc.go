/*
Package security provides the certificate authority that secures the manager
API with TLS.

# Layout

The first manager generates a CA on start and keeps it in its cert dir,
which defaults to <data-dir>/certs:

	certs/
	  ca.crt      root certificate (ECDSA P-256, 10-year validity)
	  ca.key      root key, mode 0600
	  client.crt  optional client certificate issued by `burrow cert issue`
	  client.key

Every start issues a fresh 90-day server certificate for the API listener,
with SANs for the API host, localhost, 127.0.0.1, ::1 and any extra TLS
hosts. Managers joining the cluster must be given a copy of ca.crt and
ca.key before they start, so that every manager's certificate chains to
the same root.

# Clients

Clients verify the server against ca.crt. A client certificate is optional
unless the manager sets require_client_cert, in which case the TLS
handshake fails without one. Operator tokens travel only over a verified
TLS connection.

	tlsCfg, err := security.ClientTLSConfig("certs/ca.crt", "certs")
	if err != nil {
		return err
	}
	c, err := client.NewClient("10.0.0.1:8080", token, tlsCfg)
*/
package security
