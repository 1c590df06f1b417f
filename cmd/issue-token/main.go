package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stemsi/survey-seeder/internal/config"
	"github.com/stemsi/survey-seeder/internal/database"
	"github.com/stemsi/survey-seeder/internal/logger"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/service"
	"golang.org/x/term"
)

func main() {
	var (
		subject string
		perms   string
		ttl     time.Duration
		revoke  bool
	)
	flag.StringVar(&subject, "subject", "", "Token subject, e.g. seed-cli")
	flag.StringVar(&perms, "perms", "", "Comma-separated permissions (default: all)")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (default: JWT_EXPIRY_HOURS)")
	flag.BoolVar(&revoke, "revoke", false, "Revoke a token read from stdin instead of issuing one")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if revoke {
		ctx := context.Background()
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		authService := service.NewAuthService(cfg, rdb)
		claims, err := authService.ValidateToken(readToken())
		if err != nil {
			log.Fatal().Err(err).Msg("Token is not valid")
		}
		if err := authService.RevokeToken(ctx, claims); err != nil {
			log.Fatal().Err(err).Msg("Failed to revoke token")
		}
		fmt.Printf("Revoked token %s (subject %s)\n", claims.ID, claims.Subject)
		return
	}

	if subject == "" {
		fmt.Fprintln(os.Stderr, "Error: -subject is required")
		flag.Usage()
		os.Exit(2)
	}

	authService := service.NewAuthService(cfg, nil)
	token, claims, err := authService.GenerateServiceToken(subject, parsePermissions(perms), ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to issue token")
	}

	log.Info().
		Str("jti", claims.ID).
		Str("subject", claims.Subject).
		Strs("permissions", claims.Permissions).
		Time("expires_at", claims.ExpiresAt.Time).
		Msg("Token issued")
	fmt.Println(token)
}

func parsePermissions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		all := model.AllPermissions()
		out := make([]string, len(all))
		for i, p := range all {
			out[i] = string(p)
		}
		return out
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readToken reads the token without echo when stdin is a terminal.
func readToken() string {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Token: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(raw))
	}
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}
