/*
Package client provides a thin Go client for the burrow gRPC API, used by the
burrow CLI.

Every call runs with a ten second timeout (thirty for JoinCluster and
LeaveCluster). TCP connections use TLS and verify the manager against the
cluster CA. The operator token, when given, is attached to each call as
bearer metadata and is never sent over a connection without transport
security.

# Usage

	tlsCfg, err := security.ClientTLSConfig("burrow-data/certs/ca.crt", "")
	if err != nil {
		return err
	}
	c, err := client.NewClient("127.0.0.1:8080", os.Getenv("BURROW_TOKEN"), tlsCfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.AddImage("web", 3); err != nil {
		return err
	}
	status, err := c.ImageStatus("web")

Queries also work over the manager's read-only Unix socket:

	c, err := client.NewUnixClient("/var/run/burrow.sock")
*/
package client
