package grpc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/securechat/internal/logging"
	sc "github.com/dmitrijs2005/securechat/internal/server/config"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securechat/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

var (
	keyOnce sync.Once
	testPEM []string
)

func testKeys(t *testing.T) []string {
	t.Helper()
	keyOnce.Do(func() {
		for i := 0; i < 2; i++ {
			k, err := rsa.GenerateKey(rand.Reader, 1024)
			if err != nil {
				panic(err)
			}
			der, err := x509.MarshalPKIXPublicKey(&k.PublicKey)
			if err != nil {
				panic(err)
			}
			testPEM = append(testPEM, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})))
		}
	})
	return testPEM
}

func newRelay(t *testing.T) *services.Relay {
	t.Helper()
	relay, err := services.NewRelay(repomanager.NewMemoryRepositoryManager(),
		&sc.Config{SecretKey: "test-secret", PasswordHashCost: 4, AccessTokenValidityDuration: 30 * time.Minute})
	require.NoError(t, err)
	return relay
}

func newLogger(t *testing.T) logging.Logger {
	t.Helper()
	l, err := logging.NewJSONLogger(io.Discard, "debug")
	require.NoError(t, err)
	return l
}

// startBufconn serves a relay over an in-memory listener and returns a
// connected client.
func startBufconn(t *testing.T) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", newLogger(t), newRelay(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})

	return NewClient(conn)
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func registerAndLogin(t *testing.T, c *Client, username, password, key string) string {
	t.Helper()
	ctx := context.Background()

	_, err := c.Register(ctx, &RegisterRequest{Username: username, Password: password, PublicKey: key})
	require.NoError(t, err)

	resp, err := c.Login(ctx, &LoginRequest{Username: username, Password: password})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(1800), resp.ExpiresIn)
	return resp.AccessToken
}

func TestGRPC_RegisterAndLogin(t *testing.T) {
	c := startBufconn(t)
	ctx := context.Background()
	keys := testKeys(t)

	profile, err := c.Register(ctx, &RegisterRequest{Username: "alice", Email: "a@example.com", Password: "pw", PublicKey: keys[0]})
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	_, err = c.Register(ctx, &RegisterRequest{Username: "alice", Password: "pw2", PublicKey: keys[1]})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = c.Register(ctx, &RegisterRequest{Username: "bob", Password: "pw", PublicKey: "nope"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, errWrong := c.Login(ctx, &LoginRequest{Username: "alice", Password: "bad"})
	_, errUnknown := c.Login(ctx, &LoginRequest{Username: "ghost", Password: "bad"})
	assert.Equal(t, codes.Unauthenticated, status.Code(errWrong))
	assert.Equal(t, status.Convert(errWrong).Message(), status.Convert(errUnknown).Message())
	assert.Equal(t, status.Code(errWrong), status.Code(errUnknown))
}

func TestGRPC_CurrentUserAndKeys(t *testing.T) {
	c := startBufconn(t)
	ctx := context.Background()
	keys := testKeys(t)
	token := registerAndLogin(t, c, "alice", "pw", keys[0])

	_, err := c.GetCurrentUser(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	me, err := c.GetCurrentUser(withToken(ctx, token))
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	key, err := c.GetPublicKey(ctx, &PublicKeyRequest{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, keys[0], key.PublicKey)

	_, err = c.GetPublicKey(ctx, &PublicKeyRequest{Username: "nobody"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.UpdatePublicKey(withToken(ctx, token), &UpdatePublicKeyRequest{PublicKey: keys[1]})
	require.NoError(t, err)

	key, err = c.GetPublicKey(ctx, &PublicKeyRequest{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, keys[1], key.PublicKey)
}

func TestGRPC_SendAndInbox(t *testing.T) {
	c := startBufconn(t)
	ctx := context.Background()
	keys := testKeys(t)
	aliceToken := registerAndLogin(t, c, "alice", "pw-a", keys[0])
	bobToken := registerAndLogin(t, c, "bob", "pw-b", keys[1])

	msg, err := c.SendMessage(withToken(ctx, bobToken), &SendMessageRequest{RecipientUsername: "alice", EncryptedContent: "cipher"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.ID)
	assert.Equal(t, "bob", msg.SenderUsername)

	_, err = c.SendMessage(withToken(ctx, bobToken), &SendMessageRequest{RecipientUsername: "carol", EncryptedContent: "x"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	inbox, err := c.GetInbox(withToken(ctx, aliceToken))
	require.NoError(t, err)
	require.Len(t, inbox.Messages, 1)
	assert.Equal(t, "cipher", inbox.Messages[0].EncryptedContent)

	inbox, err = c.GetInbox(withToken(ctx, bobToken))
	require.NoError(t, err)
	assert.Empty(t, inbox.Messages)

	_, err = c.CreateUploadSlot(withToken(ctx, bobToken))
	assert.Equal(t, codes.Unimplemented, status.Code(err))

	_, err = c.GetAttachmentURL(withToken(ctx, aliceToken), &AttachmentURLRequest{MessageID: 1})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:99999", newLogger(t), newRelay(t))

	err := srv.Run(context.Background())
	assert.Error(t, err)
}
