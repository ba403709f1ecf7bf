package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/config"
)

func testCfg() config.GoogleConfig {
	return config.GoogleConfig{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURI:  "http://localhost:3000/oauth/callback",
	}
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(config.GoogleConfig{ClientID: "cid"})
	require.Error(t, err)

	_, err = NewClient(config.GoogleConfig{ClientID: "cid", ClientSecret: "cs"})
	require.Error(t, err)

	_, err = NewClient(testCfg())
	require.NoError(t, err)
}

func TestPerformLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, r.ParseForm())
			require.Equal(t, "valid-code", r.PostFormValue("code"))
			require.Equal(t, "cid", r.PostFormValue("client_id"))
			require.Equal(t, "csecret", r.PostFormValue("client_secret"))
			require.Equal(t, "http://localhost:3000/oauth/callback", r.PostFormValue("redirect_uri"))
			require.Equal(t, "authorization_code", r.PostFormValue("grant_type"))
			require.Equal(t, "offline", r.PostFormValue("access_type"))
			_ = json.NewEncoder(w).Encode(ProviderTokens{
				AccessToken: "at", RefreshToken: "rt", ExpiresIn: 3599,
				Scope: "openid email profile", TokenType: "Bearer", IDToken: "idtok",
			})
		case "/tokeninfo":
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "idtok", r.URL.Query().Get("id_token"))
			_ = json.NewEncoder(w).Encode(ProviderIdentity{
				Iss: "https://accounts.google.com", Sub: "sub-1",
				Email: "a@x.com", EmailVerified: "true", Name: "A",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := NewClientWithEndpoints(testCfg(), srv.URL+"/token", srv.URL+"/tokeninfo")
	require.NoError(t, err)

	identity, err := c.PerformLogin(context.Background(), "valid-code")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", identity.Email)
	require.Equal(t, "A", identity.Name)
	require.Equal(t, "sub-1", identity.Sub)
}

func TestExchangeCode_Non2xxIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClientWithEndpoints(testCfg(), srv.URL+"/token", srv.URL+"/tokeninfo")
	require.NoError(t, err)

	_, err = c.ExchangeCode(context.Background(), "bad-code")
	require.ErrorIs(t, err, ErrTransport)
}

func TestExchangeCode_UnparsableBodyIsDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c, err := NewClientWithEndpoints(testCfg(), srv.URL+"/token", srv.URL+"/tokeninfo")
	require.NoError(t, err)

	_, err = c.ExchangeCode(context.Background(), "valid-code")
	require.ErrorIs(t, err, ErrDecode)
}

func TestExchangeCode_NetworkFailureIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c, err := NewClientWithEndpoints(testCfg(), srv.URL+"/token", srv.URL+"/tokeninfo")
	require.NoError(t, err)

	_, err = c.ExchangeCode(context.Background(), "valid-code")
	require.ErrorIs(t, err, ErrTransport)
}

func TestPerformLogin_ResolveFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			_ = json.NewEncoder(w).Encode(ProviderTokens{IDToken: "idtok"})
		case "/tokeninfo":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c, err := NewClientWithEndpoints(testCfg(), srv.URL+"/token", srv.URL+"/tokeninfo")
	require.NoError(t, err)

	identity, err := c.PerformLogin(context.Background(), "valid-code")
	require.ErrorIs(t, err, ErrTransport)
	require.Nil(t, identity)
}

func TestProviderIdentity_Validate(t *testing.T) {
	cases := []struct {
		name     string
		identity ProviderIdentity
		ok       bool
	}{
		{"verified email", ProviderIdentity{Email: "a@x.com", EmailVerified: "true"}, true},
		{"missing email", ProviderIdentity{EmailVerified: "true"}, false},
		{"malformed email", ProviderIdentity{Email: "not-an-email", EmailVerified: "true"}, false},
		{"unverified email", ProviderIdentity{Email: "a@x.com", EmailVerified: "false"}, false},
		{"verification flag absent", ProviderIdentity{Email: "a@x.com"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.identity.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrIdentity))
			}
		})
	}
}
