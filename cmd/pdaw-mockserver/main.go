// pdaw-mockserver runs the in-memory clinical-records API on a local
// port, seeded with one admin and one practitioner login, so the CLI
// can be exercised without the real backend.
package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/JFR35/pdaw-client/internal/fakeserver"
	"github.com/JFR35/pdaw-client/internal/model"
	"github.com/JFR35/pdaw-client/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":8085", "listen address")
	flag.Parse()

	log := logger.New(&logger.Config{Level: "info"})

	srv := fakeserver.New()
	adminID := srv.SeedAccount("admin@pdaw.local", "admin123!", model.RoleAdmin, false)
	practID := srv.SeedAccount("medic@pdaw.local", "medic123!", model.RolePractitioner, true)

	log.Info().
		Str("addr", *addr).
		Str("admin_id", adminID).
		Str("practitioner_id", practID).
		Msg("mock clinical-records server listening")
	fmt.Println("logins: admin@pdaw.local/admin123!  medic@pdaw.local/medic123!")

	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
