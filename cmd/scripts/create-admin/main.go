package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/database"
	"github.com/librisapp/libris/pkg/migrations"
	"github.com/librisapp/libris/pkg/users"
	"github.com/robinjoseph08/golib/logger"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	var opts struct {
		Fullname string `short:"n" long:"fullname" description:"Full name for a new account" default:"Administrator"`
		Email    string `short:"e" long:"email" description:"Email of the account" required:"true"`
		Username string `short:"u" long:"username" description:"Username of the account" required:"true"`
		Password string `short:"p" long:"password" description:"Password for a new account (read from ADMIN_PASSWORD if empty)"`
	}

	_, err := flags.Parse(&opts)
	if err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		fmt.Println("go run ./cmd/scripts/create-admin -e admin@example.com -u admin -p <password>")
		os.Exit(1)
	}
	if opts.Password == "" {
		opts.Password = os.Getenv("ADMIN_PASSWORD")
	}

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	if _, err := migrations.BringUpToDate(ctx, db); err != nil {
		log.Err(err).Fatal("migrations error")
	}

	user, created, err := users.NewService(db).EnsureAdmin(ctx, users.EnsureAdminOptions{
		Fullname: opts.Fullname,
		Email:    opts.Email,
		Username: opts.Username,
		Password: opts.Password,
	})
	if err != nil {
		log.Err(err).Fatal("create admin error")
	}

	if created {
		fmt.Printf("Created admin %s (%s)\n", user.Username, user.ID)
		return
	}
	fmt.Printf("Promoted %s (%s) to admin\n", user.Username, user.ID)
}
