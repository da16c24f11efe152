package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/api"
	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/engine"
	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/cuemby/burrow/pkg/security"
	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePorts(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    []types.PortMapping
		wantErr bool
	}{
		{"empty", nil, []types.PortMapping{}, false},
		{"pair", []string{"8080:80"}, []types.PortMapping{{From: 8080, To: 80}}, false},
		{"bare", []string{"443"}, []types.PortMapping{{From: 443, To: 443}}, false},
		{"several", []string{"1:2", "3:4"}, []types.PortMapping{{From: 1, To: 2}, {From: 3, To: 4}}, false},
		{"bad from", []string{"x:80"}, nil, true},
		{"bad to", []string{"80:y"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePorts(tt.specs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHandle(t *testing.T) {
	h, err := parseHandle("00ff")
	require.NoError(t, err)
	assert.Equal(t, types.LoadHandle{0x00, 0xff}, h)

	_, err = parseHandle("zz")
	assert.Error(t, err)
	_, err = parseHandle("")
	assert.Error(t, err)
}

func TestSealLoad(t *testing.T) {
	keyHex := strings.Repeat("11", 32)

	h1, err := sealLoad("10", keyHex, "")
	require.NoError(t, err)
	h2, err := sealLoad("3", keyHex, "")
	require.NoError(t, err)

	key, _ := hex.DecodeString(keyHex)
	sealed, err := oracle.NewSealed(key)
	require.NoError(t, err)

	raw1, _ := hex.DecodeString(h1)
	raw2, _ := hex.DecodeString(h2)
	assert.True(t, sealed.GreaterThan(raw1, raw2))
	assert.False(t, sealed.GreaterThan(raw2, raw1))

	_, err = sealLoad("10", "", "correct horse")
	assert.NoError(t, err)
	_, err = sealLoad("-1", keyHex, "")
	assert.Error(t, err)
	_, err = sealLoad("10", "", "")
	assert.Error(t, err)
	_, err = sealLoad("10", "abcd", "")
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	f := serverCmd.Flags()
	cfg := config.Default()

	require.NoError(t, f.Set("node-id", "m9"))
	require.NoError(t, f.Set("drain-interval", "3s"))
	require.NoError(t, f.Set("kafka-brokers", "a:9092,b:9092"))
	require.NoError(t, f.Set("in-memory", "true"))
	applyFlags(f, cfg)

	assert.Equal(t, "m9", cfg.NodeID)
	assert.Equal(t, 3*time.Second, cfg.DrainInterval)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.InMemory)
	assert.Equal(t, config.Default().APIAddr, cfg.APIAddr, "unset flags keep the loaded value")

	require.NoError(t, f.Set("cert-dir", "/etc/burrow/certs"))
	require.NoError(t, f.Set("tls-host", "burrow.internal"))
	require.NoError(t, f.Set("require-client-cert", "true"))
	require.NoError(t, f.Set("token-cleanup-interval", "30s"))
	applyFlags(f, cfg)

	assert.Equal(t, "/etc/burrow/certs", cfg.CertDirectory())
	assert.Equal(t, []string{"burrow.internal"}, cfg.TLSHosts)
	assert.True(t, cfg.RequireClientCert)
	assert.Equal(t, 30*time.Second, cfg.TokenCleanupInterval)
}

func TestLoadServerTLSBootstrapCreatesCA(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.APIAddr = "10.1.2.3:8080"

	server, join, err := loadServerTLS(cfg)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.CertDirectory(), security.CACertFile))
	assert.FileExists(t, filepath.Join(cfg.CertDirectory(), security.CAKeyFile))
	assert.Equal(t, tls.VerifyClientCertIfGiven, server.ClientAuth)

	leaf := server.Certificates[0].Leaf
	require.NotNil(t, leaf)
	assert.NoError(t, leaf.VerifyHostname("10.1.2.3"))
	assert.NoError(t, leaf.VerifyHostname("localhost"))
	require.Len(t, join.Certificates, 1)

	// A restart reuses the CA
	caBefore, err := security.LoadCACertFromFile(filepath.Join(cfg.CertDirectory(), security.CACertFile))
	require.NoError(t, err)
	_, _, err = loadServerTLS(cfg)
	require.NoError(t, err)
	caAfter, err := security.LoadCACertFromFile(filepath.Join(cfg.CertDirectory(), security.CACertFile))
	require.NoError(t, err)
	assert.Equal(t, caBefore.Raw, caAfter.Raw)
}

func TestLoadServerTLSJoinNeedsCA(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.JoinAddr = "10.0.0.1:8080"

	_, _, err := loadServerTLS(cfg)
	assert.ErrorContains(t, err, "ca.key")

	// With the CA copied in, the joining manager starts
	_, _, err = security.LoadOrCreateCA(cfg.CertDirectory())
	require.NoError(t, err)
	_, _, err = loadServerTLS(cfg)
	assert.NoError(t, err)
}

func TestIssueClientCert(t *testing.T) {
	certDir := t.TempDir()
	ca, _, err := security.LoadOrCreateCA(certDir)
	require.NoError(t, err)
	out := t.TempDir()

	require.NoError(t, issueClientCert(certDir, out, "ops"))
	assert.True(t, security.CertExists(out, security.ClientCertName))

	tlsCfg, err := security.ClientTLSConfig(filepath.Join(out, security.CACertFile), out)
	require.NoError(t, err)
	require.Len(t, tlsCfg.Certificates, 1)
	assert.NoError(t, ca.VerifyCertificate(tlsCfg.Certificates[0].Leaf))

	assert.Error(t, issueClientCert(t.TempDir(), out, "ops"), "no CA to sign with")
}

type countingJanitor struct {
	sweeps atomic.Int32
}

func (j *countingJanitor) CleanupExpiredTokens() int {
	j.sweeps.Add(1)
	return 0
}

func TestCleanupTokensSweepsUntilCancelled(t *testing.T) {
	j := &countingJanitor{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleanupTokens(ctx, j, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return j.sweeps.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}

func TestParseManifests(t *testing.T) {
	docs := `apiVersion: burrow/v1
kind: Image
metadata:
  name: web
spec:
  replicas: 3
  ports:
    - from: 8080
      to: 80
---
apiVersion: burrow/v1
kind: Image
metadata:
  name: worker
spec:
  replicas: 1
`
	resources, err := parseManifests([]byte(docs))
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "web", resources[0].Metadata.Name)
	assert.Equal(t, uint32(3), resources[0].Spec.Replicas)
	assert.Equal(t, []types.PortMapping{{From: 8080, To: 80}}, resources[0].Spec.Ports)
	assert.Equal(t, "worker", resources[1].Metadata.Name)

	_, err = parseManifests([]byte("kind: Service\nmetadata:\n  name: x\nspec:\n  replicas: 1\n"))
	assert.ErrorContains(t, err, "unsupported")
	_, err = parseManifests([]byte("kind: Image\nspec:\n  replicas: 1\n"))
	assert.ErrorContains(t, err, "name")
	_, err = parseManifests([]byte("kind: Image\nmetadata:\n  name: x\n"))
	assert.ErrorContains(t, err, "replicas")
	_, err = parseManifests([]byte(""))
	assert.Error(t, err)
}

type fakeApplier struct {
	status *api.ImageStatusResponse
	ports  []types.PortMapping
	calls  []string
	err    error
}

func (f *fakeApplier) ImageStatus(name string) (*api.ImageStatusResponse, error) {
	return f.status, f.err
}

func (f *fakeApplier) ImagePorts(name string) ([]types.PortMapping, error) {
	return f.ports, nil
}

func (f *fakeApplier) AddImage(name string, replicas uint32) error {
	f.calls = append(f.calls, "add")
	f.status = &api.ImageStatusResponse{Replicas: replicas, Active: true}
	f.ports = nil
	return nil
}

func (f *fakeApplier) RemoveImage(name string) error {
	f.calls = append(f.calls, "remove")
	return nil
}

func (f *fakeApplier) SetImagePorts(name string, ports []types.PortMapping) error {
	f.calls = append(f.calls, "ports")
	f.ports = ports
	return nil
}

func TestApplyImage(t *testing.T) {
	web := func(replicas uint32, ports ...types.PortMapping) *Resource {
		return &Resource{Kind: "Image", Metadata: ResourceMetadata{Name: "web"}, Spec: ImageSpec{Replicas: replicas, Ports: ports}}
	}
	port := types.PortMapping{From: 80, To: 8080}

	tests := []struct {
		name     string
		status   api.ImageStatusResponse
		ports    []types.PortMapping
		resource *Resource
		calls    []string
		msg      string
	}{
		{"new image", api.ImageStatusResponse{}, nil, web(2), []string{"add"}, "created"},
		{"new image with ports", api.ImageStatusResponse{}, nil, web(2, port), []string{"add", "ports"}, "created"},
		{"unchanged", api.ImageStatusResponse{Replicas: 2, Active: true}, []types.PortMapping{port}, web(2, port), nil, "unchanged"},
		{"ports only", api.ImageStatusResponse{Replicas: 2, Active: true}, nil, web(2, port), []string{"ports"}, "ports updated"},
		{"replicas changed", api.ImageStatusResponse{Replicas: 2, Active: true}, nil, web(5), []string{"remove", "add"}, "recreated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.status
			f := &fakeApplier{status: &status, ports: tt.ports}
			msg, err := applyImage(f, tt.resource)
			require.NoError(t, err)
			assert.Equal(t, tt.calls, f.calls)
			assert.Contains(t, msg, tt.msg)
		})
	}

	_, err := applyImage(&fakeApplier{err: errors.New("unavailable")}, web(1))
	assert.Error(t, err)
}

func TestPrintState(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewBoltStore(dir)
	require.NoError(t, err)

	e := engine.New(engine.Config{Operator: "op"})
	require.NoError(t, e.RegisterNode("op", "n1", oracle.NumericHandle(4)))
	require.NoError(t, e.AddImage("op", "web", 3))
	require.NoError(t, store.SaveState(e.State(), 12))
	require.NoError(t, store.Close())

	ro, err := storage.OpenReadOnly(dir)
	require.NoError(t, err)
	defer ro.Close()

	var buf bytes.Buffer
	require.NoError(t, printState(&buf, ro, false))
	out := buf.String()
	assert.Contains(t, out, "Applied index: 12")
	assert.Contains(t, out, "n1")
	assert.Contains(t, out, "load=<sealed>")
	assert.Contains(t, out, "web: 2")

	buf.Reset()
	require.NoError(t, printState(&buf, ro, true))
	assert.Contains(t, buf.String(), `"applied_index": 12`)
}
