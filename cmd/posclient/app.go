package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/go-pos-client/apiclient"
	"github.com/jrsteele09/go-pos-client/auth"
	"github.com/jrsteele09/go-pos-client/internal/config"
	"github.com/jrsteele09/go-pos-client/sessions"
	"github.com/jrsteele09/go-pos-client/shop"
	"github.com/jrsteele09/go-pos-client/storage"
	"github.com/jrsteele09/go-pos-client/storage/sealed"
	"github.com/jrsteele09/go-pos-client/storage/sqlitekv"
	"github.com/rs/zerolog/log"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg   config.Config
	out   io.Writer
	db    *sqlitekv.Store
	store *sessions.Store
	api   *shop.API
	auth  *auth.Service
}

func newApp(c config.Config, out io.Writer) (*app, error) {
	db, err := sqlitekv.Open(c.GetSessionDBPath())
	if err != nil {
		return nil, err
	}

	var kv storage.KV = db
	if key := c.GetSessionKey(); key != "" {
		sealedKV, err := sealed.NewFromHex(db, key)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("SESSION_KEY: %w", err)
		}
		kv = sealedKV
	}

	store := sessions.NewStore(kv)
	api := shop.NewAPI(apiclient.New(c.GetBaseURL(), &http.Client{Timeout: c.GetRequestTimeout()}, store))
	return &app{
		cfg:   c,
		out:   out,
		db:    db,
		store: store,
		api:   api,
		auth:  auth.NewService(api, store),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		log.Err(err).Msg("closing session storage")
	}
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
