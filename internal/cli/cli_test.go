package cli

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goVaultd/internal/config"
	rpcclient "github.com/LeJamon/goVaultd/internal/rpc/client"
)

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// startServer runs serve on a free port with fast ledger closes and points
// the client configuration at it.
func startServer(t *testing.T) string {
	t.Helper()
	addr := freeAddr(t)
	t.Setenv("VAULTD_SERVER_BIND", addr)
	t.Setenv("VAULTD_NETWORK_RPC_URL", "http://"+addr)
	t.Setenv("VAULTD_SERVER_CLOSE_INTERVAL", "20ms")
	t.Setenv("VAULTD_PIPELINE_POLL_INTERVAL", "20ms")
	t.Setenv("VAULTD_PIPELINE_POLL_ATTEMPTS", "100")
	t.Setenv("VAULTD_RPC_REQUESTS_PER_SECOND", "0")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	c := rpcclient.New(cfg.ClientConfig())
	require.Eventually(t, func() bool {
		_, err := c.GetHealth(context.Background())
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	return addr
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "goVaultd version 0.1.0-dev")
	assert.Contains(t, out, "RPC API version: 1")
}

func TestKeysGenerateAndShow(t *testing.T) {
	out, err := run(t, "keys", "generate", "--type", "secp256k1")
	require.NoError(t, err)
	assert.Contains(t, out, "key_type:   secp256k1")

	seed := regexp.MustCompile(`seed:\s+([0-9a-f]+)`).FindStringSubmatch(out)
	require.Len(t, seed, 2)
	addr := regexp.MustCompile(`address:\s+(\S+)`).FindStringSubmatch(out)
	require.Len(t, addr, 2)

	shown, err := run(t, "keys", "show", seed[1], "--type", "secp256k1")
	require.NoError(t, err)
	assert.Contains(t, shown, addr[1])

	_, err = run(t, "keys", "generate", "--type", "rsa")
	assert.Error(t, err)
}

func TestVaultCommandsAgainstServer(t *testing.T) {
	startServer(t)

	out, err := run(t, "keys", "generate", "--type", "ed25519")
	require.NoError(t, err)
	seed := regexp.MustCompile(`seed:\s+([0-9a-f]+)`).FindStringSubmatch(out)[1]
	t.Setenv(SeedEnv, seed)

	out, err = run(t, "vault", "create", "1000", "--days", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "vault 1 created")

	out, err = run(t, "vault", "count")
	require.NoError(t, err)
	assert.Equal(t, "1", strings.TrimSpace(out))

	out, err = run(t, "vault", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1000.00")

	out, err = run(t, "vault", "quote", "1", "--penalty", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "payout 930.00, penalty 70.00")

	_, err = run(t, "vault", "withdraw", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still locked")

	out, err = run(t, "vault", "early-withdraw", "1", "--penalty", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "payout 930.00, penalty 70.00")

	out, err = run(t, "vault", "show", "1")
	require.NoError(t, err)
	assert.Regexp(t, `1\s+1000.00\s+\S+\s+no`, out)

	require.Eventually(t, func() bool {
		out, err = run(t, "vault", "history")
		return err == nil && strings.Contains(out, "early_withdraw")
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, out, "create_vault")

	out, err = run(t, "rpc", "getLatestLedger")
	require.NoError(t, err)
	assert.Contains(t, out, `"sequence"`)
}

func TestVaultCreateLostSubmissionIsExplained(t *testing.T) {
	addr := startServer(t)
	// relay to the node but drop the connection on sendTransaction
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if bytes.Contains(body, []byte(`"sendTransaction"`)) {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				_ = conn.Close()
			}
			return
		}
		resp, err := http.Post("http://"+addr, "application/json", bytes.NewReader(body))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		_, _ = io.Copy(w, resp.Body)
	}))
	t.Cleanup(relay.Close)
	t.Setenv("VAULTD_NETWORK_RPC_URL", relay.URL)

	out, err := run(t, "keys", "generate", "--type", "ed25519")
	require.NoError(t, err)
	t.Setenv(SeedEnv, regexp.MustCompile(`seed:\s+([0-9a-f]+)`).FindStringSubmatch(out)[1])

	_, err = run(t, "vault", "create", "10", "--days", "30")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check the vault before retrying")
}

func TestVaultCreateRequiresKey(t *testing.T) {
	t.Setenv(SeedEnv, "")
	seedHex = ""
	_, err := run(t, "vault", "create", "10", "--days", "30")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signer unavailable")
}

func TestVaultCreateRejectsBadInput(t *testing.T) {
	_, err := run(t, "vault", "create", "abc")
	assert.Error(t, err)

	_, err = run(t, "vault", "withdraw", "0")
	assert.Error(t, err)
}

func TestOpenStoreEngines(t *testing.T) {
	for _, engine := range []string{"pebble", "leveldb"} {
		t.Run(engine, func(t *testing.T) {
			dir := t.TempDir()
			manager, db, err := openStore(engine, dir)
			require.NoError(t, err)
			require.NoError(t, db.Write(context.Background(), []byte("k"), []byte("v")))
			require.NoError(t, manager.Close())

			manager, db, err = openStore(engine, dir)
			require.NoError(t, err)
			defer manager.Close()
			v, err := db.Read(context.Background(), []byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), v)
		})
	}
}
