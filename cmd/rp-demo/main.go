// Command rp-demo runs a minimal relying party against a real provider.
// Configuration comes from the environment (a .env file is honored):
//
//	RP_ISSUER         issuer base URL (required)
//	RP_CLIENT_ID      relying party client id (required)
//	RP_CLIENT_SECRET  client secret (required for code flows)
//	RP_BASE_URL       externally visible base URL (required)
//	RP_RESPONSE_TYPE  code, id_token, "code id_token" or none (default id_token)
//	RP_COOKIE_KEY     cookie signing key (random per-process key when unset)
//	RP_STORE_DSN      sqlite dsn for logout-token records (in-memory when unset)
//	RP_LISTEN         listen address (default :3000)
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"

	"github.com/openidauth/rp"
	"github.com/openidauth/rp/oidc"
	"github.com/openidauth/rp/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "rp-demo",
		Level: hclog.Info,
	})

	issuer := os.Getenv("RP_ISSUER")
	clientID := os.Getenv("RP_CLIENT_ID")
	baseURL := os.Getenv("RP_BASE_URL")
	if issuer == "" || clientID == "" || baseURL == "" {
		return fmt.Errorf("RP_ISSUER, RP_CLIENT_ID and RP_BASE_URL are required")
	}

	opts := []oidc.Option{oidc.WithLogger(logger)}
	if rt := os.Getenv("RP_RESPONSE_TYPE"); rt != "" {
		opts = append(opts, oidc.WithResponseType(oidc.ResponseType(rt)))
	}
	cfg, err := oidc.NewConfig(issuer, clientID, oidc.ClientSecret(os.Getenv("RP_CLIENT_SECRET")), baseURL, opts...)
	if err != nil {
		return err
	}

	var handlerOpts []rp.Option
	if key := os.Getenv("RP_COOKIE_KEY"); key != "" {
		handlerOpts = append(handlerOpts, rp.WithCookieKey([]byte(key)))
	}
	if dsn := os.Getenv("RP_STORE_DSN"); dsn != "" {
		tokens, err := sqlite.New(dsn)
		if err != nil {
			return err
		}
		defer tokens.Close()
		handlerOpts = append(handlerOpts, rp.WithLogoutTokenStore(tokens))
	}

	auth, err := rp.New(cfg, handlerOpts...)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Handle("/login", auth)
	r.Handle("/callback", auth)
	r.Handle("/logout", auth)
	r.Handle("/session", auth)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `<a href="/login">sign in</a>`)
	})

	listen := os.Getenv("RP_LISTEN")
	if listen == "" {
		listen = ":3000"
	}
	logger.Info("listening", "addr", listen, "issuer", issuer)
	return http.ListenAndServe(listen, r)
}
