package transport

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
)

func TestCompose_NoAuth(t *testing.T) {
	composed, err := Compose(model.AuthConfig{}, 5*time.Second)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if composed.Description != "none" {
		t.Errorf("Expected description 'none', got %q", composed.Description)
	}
	if composed.ReadTimeout != 15*time.Second {
		t.Errorf("Expected read timeout 3x connect timeout, got %v", composed.ReadTimeout)
	}
}

func TestCompose_ProxyAndSSO(t *testing.T) {
	composed, err := Compose(model.AuthConfig{
		ProxyURL: "http://proxy.corp:8080",
		UseSSO:   true,
	}, 5*time.Second)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if composed.Description != "proxy+sso" {
		t.Errorf("Expected 'proxy+sso', got %q", composed.Description)
	}
}

func TestCompose_MissingClientCertFails(t *testing.T) {
	_, err := Compose(model.AuthConfig{
		ClientCertFile: "/nonexistent/cert.pem",
		ClientKeyFile:  "/nonexistent/key.pem",
	}, 5*time.Second)
	if err == nil {
		t.Error("Expected error for missing client certificate files")
	}
}

func TestCompose_BadCABundleFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ca.pem")
	if err := os.WriteFile(path, []byte("not a certificate"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Compose(model.AuthConfig{CABundleFile: path}, 5*time.Second)
	if err == nil {
		t.Error("Expected error for unusable CA bundle")
	}
}

func TestNegotiateRoundTripper_AttachesHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	composed, err := Compose(model.AuthConfig{UseSSO: true, SSOToken: "abc123"}, 5*time.Second)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	client := &http.Client{Transport: composed.RoundTripper}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	_ = resp.Body.Close()

	if gotAuth != "Negotiate abc123" {
		t.Errorf("Expected Negotiate header with token, got %q", gotAuth)
	}
}

func TestCompose_ClientCertSuppressesSSO(t *testing.T) {
	certFile, keyFile := writeSelfSignedPair(t)

	composed, err := Compose(model.AuthConfig{
		ClientCertFile: certFile,
		ClientKeyFile:  keyFile,
		UseSSO:         true,
	}, 5*time.Second)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if composed.Description != "client-cert" {
		t.Errorf("Expected 'client-cert' (SSO suppressed), got %q", composed.Description)
	}
}

func writeSelfSignedPair(t *testing.T) (certFile, keyFile string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "linksentry-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	if err := os.WriteFile(certFile, certPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	return certFile, keyFile
}
