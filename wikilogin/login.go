package main

import (
	"bufio"
	"fmt"
	"os"

	mwclient "cgt.name/pkg/go-mwclient"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/garyhouston/illustrationcount/commons"
	"github.com/garyhouston/illustrationcount/mwlib"
	"github.com/garyhouston/illustrationcount/wikidata"
	goflags "github.com/jessevdk/go-flags"
)

type flags struct {
	Operator          string `long:"operator" env:"illustrationcount_operator" description:"Operator's email address or Wiki user name" default:"nobody@example.com"`
	Commons           bool   `long:"commons" description:"Log in to Commons, for adding depicts statements, instead of Wikidata"`
	CookieFile        string `long:"cookiefile" env:"illustrationcount_cookiefile" description:"Path of the Wikidata cookies cache file"`
	CommonsCookieFile string `long:"commonscookiefile" env:"illustrationcount_commonscookiefile" description:"Path of the Commons cookies cache file"`
}

func parseFlags() flags {
	var flags flags
	parser := goflags.NewParser(&flags, goflags.HelpFlag)
	args, err := parser.Parse()
	if err != nil {
		log.WithError(err).Fatal("bad arguments")
	}
	if len(args) != 0 {
		log.Fatal("Unexpected argument.")
	}
	if flags.CookieFile == "" {
		flags.CookieFile = mwlib.WorkingFile("cookies")
	}
	if flags.CommonsCookieFile == "" {
		flags.CommonsCookieFile = mwlib.WorkingFile("commons_cookies")
	}
	return flags
}

// This login program can be run before the main bot instead of putting
// the password in its environment. It saves the session cookies of
// Wikidata, or of Commons with --commons, into the bot's cookie file.
func main() {
	log.SetHandler(cli.New(os.Stderr))
	flags := parseFlags()
	apiURL, cookieFile := wikidata.APIURL, flags.CookieFile
	if flags.Commons {
		apiURL, cookieFile = commons.APIURL, flags.CommonsCookieFile
	}
	client, err := mwclient.New(apiURL, "wikilogin "+flags.Operator)
	if err != nil {
		log.WithError(err).Fatal("creating client")
	}
	client.Maxlag.On = true

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("Username: ")
	scanner.Scan()
	user := scanner.Text()
	fmt.Print("Password: ")
	scanner.Scan()
	password := scanner.Text()

	if err := client.Login(user, password); err != nil {
		log.WithError(err).Fatal("login failed")
	}
	if err := mwlib.WriteCookies(client.DumpCookies(), cookieFile); err != nil {
		log.WithError(err).Fatal("saving cookies")
	}
	log.Infof("session saved to %s", cookieFile)
}
