/*
Lensd starts an HTTP server exposing the registered example lenses for
GET/PUT over the network and begins listening for connections.

Usage:

	lensd [flags]
	lensd [flags] -l [[ADDRESS]:PORT]

Once started, lensd will listen for HTTP requests and respond to them using
a REST protocol rooted at /api/v1. By default, it listens on localhost:8080.
This can be changed with the --listen/-l flag (or config via environment
var). The flag argument must be either a full address with port, such as
"192.168.0.2:6001", or just the IP address preceeded by a colon, such as
":6001".

If a bearer-token secret is not given, one will be automatically generated
and seeded at startup. As a consequence, in this mode of operation all
tokens are rendered invalid as soon as the server shuts down. This is
suitable for testing, but must be given via either CLI flags or environment
variable if running in production.

The flags are:

	-v, --version
		Give the current version of lensd and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment
		variable LENSD_LISTEN_ADDRESS, and if that is not given, will default
		to localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing bearer tokens. If there are less
		than 32 bytes in the secret, it will be repeated until it is. The
		maximum size is 64 bytes. If not given, will default to the value of
		environment variable LENSD_TOKEN_SECRET. If no secret is specified or
		an empty secret is given, a random secret will be automatically
		generated. Note that any tokens issued with a random secret will
		become invalid as soon as the server shuts down.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the
		following: inmem, sqlite. inmem has no further params. sqlite needs
		the path to the data directory, such as sqlite:path/to/db_dir. If not
		given, will default to the value of environment variable
		LENSD_DATABASE. If no DB driver is specified or an empty one is
		given, an in-memory database is automatically selected.
*/
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/dekarrin/lens/internal/version"
	"github.com/dekarrin/lens/server"
	"github.com/dekarrin/lens/server/api"
	"github.com/dekarrin/lens/server/middle"
	"github.com/dekarrin/lens/server/token"
	"github.com/dekarrin/lens/server/tunas"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/pflag"
)

const (
	EnvListen = "LENSD_LISTEN_ADDRESS"
	EnvSecret = "LENSD_TOKEN_SECRET"
	EnvDB     = "LENSD_DATABASE"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of lensd and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("lensd v%s\n", version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	addr, port, err := parseListenAddr()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		os.Exit(1)
	}

	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr == "" {
		dbConnStr = "inmem"
	}
	db, err := server.ParseDBConnString(dbConnStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		os.Exit(1)
	}

	tokSecret, err := resolveSecret()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		os.Exit(1)
	}

	cfg := server.Config{TokenSecret: tokSecret, DB: db}.FillDefaults()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL invalid configuration: %s", err.Error())
	}

	store, err := cfg.DB.Connect()
	if err != nil {
		log.Fatalf("FATAL could not connect to DB: %s", err.Error())
	}
	log.Printf("DEBUG Connected to %s DB", cfg.DB.Type)

	secretHash, err := token.HashSecret(cfg.TokenSecret)
	if err != nil {
		log.Fatalf("FATAL could not hash token secret: %s", err.Error())
	}

	a := api.API{
		Backend:     tunas.Service{DB: store},
		UnauthDelay: cfg.UnauthDelay(),
		Secret:      cfg.TokenSecret,
		SecretHash:  secretHash,
	}

	r := chi.NewRouter()
	r.Use(middle.DontPanic())

	r.Route(api.PathPrefix, func(r chi.Router) {
		r.Get("/info", a.HTTPGetInfo())
		r.Get("/lenses", a.HTTPListLenses())

		r.With(middle.OptionalAuth(a.Secret, a.UnauthDelay)).Post("/token", a.HTTPCreateToken())

		r.With(middle.OptionalAuth(a.Secret, a.UnauthDelay)).Post("/sessions", a.HTTPCreateSession())
		r.With(middle.OptionalAuth(a.Secret, a.UnauthDelay)).Get("/sessions/{id}", a.HTTPGetSession())
		r.With(middle.RequireAuth(a.Secret, a.UnauthDelay)).Put("/sessions/{id}", a.HTTPApplySession())
		r.With(middle.RequireAuth(a.Secret, a.UnauthDelay)).Delete("/sessions/{id}", a.HTTPDeleteSession())
	})

	listenAddr := fmt.Sprintf("%s:%d", addr, port)
	log.Printf("INFO  Starting lensd v%s on %s...", version.Current, listenAddr)
	if err := http.ListenAndServe(listenAddr, r); err != nil {
		log.Fatalf("FATAL server stopped: %s", err.Error())
	}
}

func parseListenAddr() (addr string, port int, err error) {
	port = 8080
	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		return "localhost", port, nil
	}

	bindParts := strings.SplitN(listenAddr, ":", 2)
	if len(bindParts) != 2 {
		return "", 0, fmt.Errorf("listen address is not in ADDRESS:PORT or :PORT format")
	}

	addr = bindParts[0]
	if addr == "" {
		addr = "localhost"
	}
	port, err = strconv.Atoi(bindParts[1])
	if err != nil {
		return "", 0, fmt.Errorf("%q is not a valid port number", bindParts[1])
	}

	return addr, port, nil
}

func resolveSecret() ([]byte, error) {
	tokSecStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		tokSecStr = *flagSecret
	}

	if tokSecStr == "" {
		tokSecret := make([]byte, 64)
		if _, err := rand.Read(tokSecret); err != nil {
			return nil, fmt.Errorf("could not generate token secret: %w", err)
		}
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
		return tokSecret, nil
	}

	tokSecret := []byte(tokSecStr)
	for len(tokSecret) < server.MinSecretSize {
		doubled := make([]byte, len(tokSecret)*2)
		copy(doubled, tokSecret)
		copy(doubled[len(tokSecret):], tokSecret)
		tokSecret = doubled
	}
	if len(tokSecret) > server.MaxSecretSize {
		return nil, fmt.Errorf("token secret is %d bytes, but it must be <= %d bytes", len(tokSecret), server.MaxSecretSize)
	}

	return tokSecret, nil
}
