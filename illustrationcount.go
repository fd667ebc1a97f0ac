package main

import (
	"net/http"
	"os"

	mwclient "cgt.name/pkg/go-mwclient"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/garyhouston/illustrationcount/commons"
	"github.com/garyhouston/illustrationcount/mwlib"
	"github.com/garyhouston/illustrationcount/wikidata"
	goflags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type flags struct {
	Verbose           bool   `short:"v" long:"verbose" env:"illustrationcount_verbose" description:"Print diagnostic output"`
	Recursive         bool   `short:"r" long:"recursive" env:"illustrationcount_recursive" description:"Also count files in subcategories"`
	Depth             int    `short:"d" long:"depth" env:"illustrationcount_depth" description:"Maximum subcategory depth with --recursive. No limit if zero" default:"0"`
	AllFiles          bool   `long:"allfiles" env:"illustrationcount_allfiles" description:"Count every file, not only bitmaps and drawings"`
	Item              string `long:"item" env:"illustrationcount_item" description:"Write to this item instead of looking it up"`
	Property          string `long:"property" env:"illustrationcount_property" description:"Property receiving the count" default:"P1114"`
	Qualifier         string `long:"qualifier" env:"illustrationcount_qualifier" description:"Point in time qualifier property. None if empty" default:"P585"`
	Language          string `long:"language" env:"illustrationcount_language" description:"Language for label searches" default:"en"`
	WriteZero         bool   `long:"write-zero" env:"illustrationcount_write_zero" description:"Write a count of zero instead of skipping empty categories"`
	DryRun            bool   `short:"n" long:"dry-run" env:"illustrationcount_dry_run" description:"Do everything except editing Wikidata"`
	Tree              bool   `long:"tree" env:"illustrationcount_tree" description:"Process the taxon categories of every genus below the given family category"`
	Images            bool   `long:"images" env:"illustrationcount_images" description:"Add image statements for categories with 1-2 files instead of counts"`
	Depicts           bool   `long:"depicts" env:"illustrationcount_depicts" description:"Add depicts statements to the files on Commons instead of counts"`
	Families          bool   `long:"families" env:"illustrationcount_families" description:"Process every family category below the given category, as with --tree"`
	Count             string `long:"count" env:"illustrationcount_count" description:"Write this count instead of counting the category's files"`
	Operator          string `long:"operator" env:"illustrationcount_operator" description:"Operator's email address or Wiki user name"`
	CookieFile        string `long:"cookiefile" env:"illustrationcount_cookiefile" description:"Path of the Wikidata cookies cache file"`
	CommonsCookieFile string `long:"commonscookiefile" env:"illustrationcount_commonscookiefile" description:"Path of the Commons cookies cache file, used with --depicts"`
	ReviewFile        string `long:"reviewfile" env:"illustrationcount_reviewfile" description:"Path of the file listing categories for manual review"`
	StateFile         string `long:"statefile" env:"illustrationcount_statefile" description:"Path of the file recording processed categories and files"`
	PushGateway       string `long:"pushgateway" env:"illustrationcount_pushgateway" description:"Prometheus Pushgateway URL for run statistics"`
}

func parseFlags(argv []string) ([]string, flags, error) {
	var flags flags
	parser := goflags.NewParser(&flags, goflags.HelpFlag)
	parser.Usage = "[OPTIONS] category"
	args, err := parser.ParseArgs(argv)
	if err != nil {
		return nil, flags, err
	}
	if flags.CookieFile == "" {
		flags.CookieFile = mwlib.WorkingFile("cookies")
	}
	if flags.CommonsCookieFile == "" {
		flags.CommonsCookieFile = mwlib.WorkingFile("commons_cookies")
	}
	if flags.ReviewFile == "" {
		flags.ReviewFile = mwlib.WorkingFile("categories_to_review.yaml")
	}
	return args, flags, nil
}

// wikiSession is the Wikidata connection, with its cookies kept in a file
// between runs.
type wikiSession struct {
	*mwclient.Client
	cookieFile string
}

func (s wikiSession) Login(username, password string) error {
	s.Client.LoadCookies(expiredCookies(s.cookieFile))
	return s.Client.Login(username, password)
}

// The saved session cookies, expired. Loading them clears old session
// cookies, otherwise they remain in the cookiejar as duplicates and remain
// in use.
func expiredCookies(cookieFile string) []*http.Cookie {
	cookies, err := mwlib.ReadCookies(cookieFile)
	if err != nil {
		log.WithError(err).Warn("ignoring saved cookies")
		return nil
	}
	for _, cookie := range cookies {
		cookie.MaxAge = -1
	}
	return cookies
}

// Open a session, reusing cookies saved by an earlier run if there are any.
func newSession(client *mwclient.Client, cookieFile string) wikiSession {
	cookies, err := mwlib.ReadCookies(cookieFile)
	if err != nil {
		log.WithError(err).Warn("ignoring saved cookies")
	} else {
		client.LoadCookies(cookies)
	}
	return wikiSession{Client: client, cookieFile: cookieFile}
}

func (s wikiSession) saveCookies() error {
	return mwlib.WriteCookies(s.DumpCookies(), s.cookieFile)
}

func newClient(apiURL, operator string) (*mwclient.Client, error) {
	client, err := mwclient.New(apiURL, "illustrationcount "+operator)
	if err != nil {
		return nil, err
	}
	client.Maxlag.On = true
	return client, nil
}

func editSummary(flags flags) string {
	group := wikidata.NewEditGroup()
	switch {
	case flags.Depicts:
		return wikidata.CommonsEditSummary("Add depicts statements from botanical illustration categories", group)
	case flags.Images:
		return wikidata.EditSummary("Add botanical illustrations from Wikimedia Commons", group)
	}
	return wikidata.EditSummary("Update number of botanical illustrations on Wikimedia Commons", group)
}

// Option combinations that make no sense.
func checkFlags(flags flags) error {
	if flags.Images && flags.Depicts {
		return errors.New("--images and --depicts are exclusive")
	}
	if flags.Count != "" && (flags.Images || flags.Depicts || flags.Tree || flags.Families) {
		return errors.New("--count only applies to a single category count")
	}
	return nil
}

// Handler for processing to be done when the bot is terminating.
func endProc(session wikiSession, stats *stats, pushGateway string) {
	// Cookies can change while the bot is running, so save the latest
	// values for the next run.
	if err := session.saveCookies(); err != nil {
		log.WithError(err).Warn("saving cookies")
	}
	if stats.examined > 1 {
		stats.print()
	}
	if pushGateway != "" {
		if err := stats.push(pushGateway); err != nil {
			log.WithError(err).Warn("pushing statistics")
		}
	}
}

func run(argv []string) int {
	args, flags, err := parseFlags(argv)
	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			os.Stdout.WriteString(err.Error() + "\n")
			return 0
		}
		log.WithError(err).Error("bad arguments")
		return 1
	}
	log.SetHandler(cli.New(os.Stderr))
	if flags.Verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	if len(args) != 1 {
		log.Error("Exactly one category name expected.")
		return 1
	}
	if flags.Operator == "" {
		log.Error("Operator email / username not set.")
		return 1
	}
	if err := checkFlags(flags); err != nil {
		log.WithError(err).Error("bad arguments")
		return 1
	}
	builder, err := wikidata.NewBuilder(flags.Property, flags.Qualifier)
	if err != nil {
		log.WithError(err).Error("bad statement configuration")
		return 1
	}
	state, err := loadProcessedState(flags.StateFile)
	if err != nil {
		log.WithError(err).Error("loading state file")
		return 1
	}

	commonsClient, err := newClient(commons.APIURL, flags.Operator)
	if err != nil {
		log.WithError(err).Error("creating Commons client")
		return 1
	}
	wikiClient, err := newClient(wikidata.APIURL, flags.Operator)
	if err != nil {
		log.WithError(err).Error("creating Wikidata client")
		return 1
	}
	// Counts and images are written to Wikidata, depicts statements to
	// the files on Commons.
	session := newSession(wikiClient, flags.CookieFile)
	kb := wikidata.NewClient(session)
	kb.Language = flags.Language
	target := kb
	if flags.Depicts {
		session = newSession(commonsClient, flags.CommonsCookieFile)
		target = wikidata.NewClient(session)
	}
	publisher := wikidata.NewPublisher(target)
	publisher.DryRun = flags.DryRun
	publisher.Summary = editSummary(flags)
	if !flags.DryRun {
		if err := publisher.Login(wikidata.CredentialsFromEnv("illustrationcount")); err != nil {
			log.WithError(err).Error("authentication failed, nothing written")
			return 1
		}
	}

	resolver := commons.NewResolver(commonsClient)
	resolver.AllFiles = flags.AllFiles
	mapper := wikidata.NewMapper(kb)
	mapper.Item = flags.Item

	var stats stats
	defer endProc(session, &stats, flags.PushGateway)

	p := &pipeline{
		resolver:  resolver,
		mapper:    mapper,
		builder:   builder,
		publisher: publisher,
		review:    &reviewFile{path: flags.ReviewFile},
		state:     state,
		stats:     &stats,
		recursive: flags.Recursive,
		depth:     flags.Depth,
		writeZero: flags.WriteZero,
		count:     flags.Count,
		images:    flags.Images,
		depicts:   flags.Depicts,
		dryRun:    flags.DryRun,
	}
	switch {
	case flags.Families:
		if err := p.processFamilies(commons.CategoryTitle(args[0]), !flags.Verbose); err != nil {
			log.WithError(err).Error("family walk failed")
			return 1
		}
		return 0
	case flags.Tree:
		if err := p.processTree(commons.CategoryTitle(args[0]), !flags.Verbose); err != nil {
			log.WithError(err).Error("tree walk failed")
			return 1
		}
		return 0
	}
	if err := p.processCategory(args[0]); err != nil {
		stats.errors++
		log.WithError(err).WithField("category", args[0]).Error("failed")
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:]))
}
