package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSubscription builds keys the way a browser does: an uncompressed
// P-256 public key and a 16 byte auth secret, base64url without padding.
func newSubscription(t *testing.T, endpoint string) Subscription {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return Subscription{
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(auth),
	}
}

func newTestSender(t *testing.T) Sender {
	pub, priv, err := GenerateKeys()
	require.NoError(t, err)
	return NewSender(VAPIDConfig{PublicKey: pub, PrivateKey: priv, Subject: "mailto:hr@example.com"}, nil)
}

func TestSendDelivers(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sub := newSubscription(t, srv.URL+"/push/abc")

	err := newTestSender(t).Send(context.Background(), sub, Payload{Title: "Leave approved", Body: "3-4 March"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "aes128gcm", got.Header.Get("Content-Encoding"))
	assert.Contains(t, got.Header.Get("Authorization"), "vapid")
}

func TestSendGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	sub := newSubscription(t, srv.URL+"/push/gone")

	err := newTestSender(t).Send(context.Background(), sub, Payload{Title: "x"})
	assert.ErrorIs(t, err, ErrSubscriptionGone)
}

func TestSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sub := newSubscription(t, srv.URL+"/push/err")

	err := newTestSender(t).Send(context.Background(), sub, Payload{Title: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSubscriptionGone)
}

func TestClientErrorsDoNotOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 5 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sender := newTestSender(t)
	sub := newSubscription(t, srv.URL+"/push/bad")

	for range 5 {
		err := sender.Send(context.Background(), sub, Payload{Title: "x"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
		assert.NotErrorIs(t, err, ErrSubscriptionGone)
	}

	require.NoError(t, sender.Send(context.Background(), newSubscription(t, srv.URL+"/push/ok"), Payload{Title: "x"}))
	assert.Equal(t, int32(6), calls.Load())
}

func TestServerErrorsOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := newTestSender(t)
	sub := newSubscription(t, srv.URL+"/push/down")

	for range 3 {
		require.Error(t, sender.Send(context.Background(), sub, Payload{Title: "x"}))
	}
	err := sender.Send(context.Background(), sub, Payload{Title: "x"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEndpointHost(t *testing.T) {
	assert.Equal(t, "fcm.googleapis.com", endpointHost("https://fcm.googleapis.com/fcm/send/secret"))
	assert.Equal(t, "push-service", endpointHost("::not a url"))
}
