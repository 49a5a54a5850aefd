// Command splitmate is a terminal client for the shared-expense API:
// log in, record expenses against a group, view aggregated totals, and
// split bills with the standalone calculator.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkowal/splitmate/internal/api"
	"github.com/mkowal/splitmate/internal/calculator"
	"github.com/mkowal/splitmate/internal/config"
	"github.com/mkowal/splitmate/internal/models"
	"github.com/mkowal/splitmate/internal/report"
	"github.com/mkowal/splitmate/internal/service"
	"github.com/mkowal/splitmate/internal/session"
	"github.com/mkowal/splitmate/internal/storage/sqlite"
	"github.com/mkowal/splitmate/pkg/logging"
)

var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "register":
		err = runRegister(args)
	case "login":
		err = runLogin(args)
	case "logout":
		err = runLogout(args)
	case "status":
		err = runStatus(args)
	case "dashboard":
		err = runDashboard(args)
	case "add":
		err = runAdd(args)
	case "expenses":
		err = runExpenses(args)
	case "groups":
		err = runGroups(args)
	case "calc":
		err = runCalc(args)
	case "archive":
		err = runArchive(args)
	case "sync":
		err = runSync(args)
	case "version", "--version", "-v":
		fmt.Printf("splitmate %s\n", Version)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", api.Summary(err))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("splitmate - shared expense tracker")
	fmt.Println("\nUsage:")
	fmt.Println("  splitmate register [-u username]")
	fmt.Println("  splitmate login [-u username]")
	fmt.Println("  splitmate logout")
	fmt.Println("  splitmate status")
	fmt.Println("  splitmate dashboard [-watch] [-interval seconds]")
	fmt.Println("  splitmate add -name NAME -amount AMOUNT [-desc TEXT]")
	fmt.Println("  splitmate expenses")
	fmt.Println("  splitmate groups [create NAME]")
	fmt.Println("  splitmate calc [-people N] [-total AMOUNT] [-tip PCT] [-i]")
	fmt.Println("  splitmate archive")
	fmt.Println("  splitmate sync")
	fmt.Println("  splitmate version")
}

// app bundles the wired-up client stack for commands that talk to the
// API or the local store.
type app struct {
	cfg      config.Config
	store    *sqlite.Store
	sessions *session.Manager
	client   *api.Client
}

func newApp() (*app, error) {
	path := os.Getenv("SPLITMATE_CONFIG")
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(store)
	client := api.New(cfg.BaseURL, cfg.Timeout(), sessions)

	return &app{cfg: cfg, store: store, sessions: sessions, client: client}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: closing local store:", err)
	}
}

// requireAuth restores the session and refuses to continue when no
// token is persisted.
func (a *app) requireAuth(ctx context.Context) error {
	if !a.sessions.Restore(ctx) {
		return errors.New("not logged in, run 'splitmate login' first")
	}
	return nil
}

func runRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("u", "", "username")
	fs.Parse(args)

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	user, pass, err := promptCredentials(*username)
	if err != nil {
		return err
	}

	auth := service.NewAuthService(a.client, a.sessions)
	created, err := auth.Register(context.Background(), user, pass)
	if err != nil {
		return err
	}
	fmt.Printf("Account %q created. Log in with 'splitmate login'.\n", created.Username)
	return nil
}

func runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	fs.Parse(args)

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	user, pass, err := promptCredentials(*username)
	if err != nil {
		return err
	}

	auth := service.NewAuthService(a.client, a.sessions)
	if err := auth.Login(context.Background(), user, pass); err != nil {
		return err
	}
	fmt.Println("Logged in.")
	return nil
}

func runLogout(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	auth := service.NewAuthService(a.client, a.sessions)
	if err := auth.Logout(context.Background()); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func runStatus(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.sessions.Restore(context.Background()) {
		fmt.Println("Status: logged in")
	} else {
		fmt.Println("Status: logged out")
	}
	fmt.Println("API:", a.cfg.BaseURL)
	fmt.Println("Local store:", a.cfg.DBPath)
	return nil
}

func runDashboard(args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	watch := fs.Bool("watch", false, "refresh continuously")
	interval := fs.Int("interval", 30, "refresh interval in seconds")
	fs.Parse(args)

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	expenses := service.NewExpenseService(a.client, a.cfg.DefaultGroupName)

	if !*watch {
		dash, err := expenses.Load(ctx)
		if err != nil {
			return err
		}
		renderDashboard(dash)
		return nil
	}

	if a.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(a.cfg.MetricsAddr, mux); err != nil {
				fmt.Fprintln(os.Stderr, "warning: metrics listener:", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Duration(*interval) * time.Second)
	defer ticker.Stop()

	for {
		dash, err := expenses.Load(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "refresh failed:", api.Summary(err))
		} else {
			renderDashboard(dash)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "expense name")
	amount := fs.String("amount", "", "expense amount")
	desc := fs.String("desc", "", "optional description")
	fs.Parse(args)

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	expenses := service.NewExpenseService(a.client, a.cfg.DefaultGroupName)

	// Select the working group the way the dashboard does, so a group is
	// only auto-provisioned when the server really has none.
	if _, err := expenses.Load(ctx); err != nil {
		return err
	}

	created, refreshed, err := expenses.Submit(ctx, service.ExpenseInput{
		Name:        *name,
		Amount:      *amount,
		Description: *desc,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Expense %q added (%s).\n", created.Name, created.Amount)
	if refreshed != nil {
		fmt.Printf("Total is now %.2f across %d expenses.\n", report.Total(refreshed), len(refreshed))
	}
	return nil
}

func runExpenses(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	expenses, err := a.client.ListExpenses(ctx)
	if err != nil {
		return err
	}
	renderExpenses(expenses)
	return nil
}

func runGroups(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	if len(args) >= 1 && args[0] == "create" {
		if len(args) < 2 {
			return errors.New("usage: splitmate groups create NAME")
		}
		group, err := a.client.CreateGroup(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Group %q created (%s).\n", group.Name, group.ID)
		return nil
	}

	groups, err := a.client.ListGroups(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Println("No groups yet. One is created automatically with your first expense.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMEMBERS\tID")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%d\t%s\n", g.Name, len(g.Members), g.ID)
	}
	w.Flush()
	return nil
}

func runSync(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	sync := service.NewSyncService(a.client, a.store)
	res, err := sync.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Synced %d groups and %d expenses.\n", res.Groups, res.Expenses)
	return nil
}

func runArchive(args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()

	// Refresh the cache when possible; the archive stays usable offline.
	if a.sessions.Restore(ctx) {
		sync := service.NewSyncService(a.client, a.store)
		if _, err := sync.Sync(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "sync failed, showing cached data:", api.Summary(err))
		}
	}

	expenses, err := a.store.CachedExpenses(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Archive: %d expenses, %.2f total\n\n", len(expenses), report.Total(expenses))
	renderExpenses(expenses)
	return nil
}

func runCalc(args []string) error {
	fs := flag.NewFlagSet("calc", flag.ExitOnError)
	people := fs.String("people", strconv.Itoa(calculator.DefaultPeople), "number of people")
	total := fs.String("total", "0", "total amount")
	tip := fs.Int("tip", 0, "tip percent (0, 10, 15 or 20)")
	interactive := fs.Bool("i", false, "interactive mode with history")
	fs.Parse(args)

	if *interactive {
		return calcREPL()
	}

	c := calculator.Compute(calculator.ParsePeople(*people), calculator.ParseTotal(*total), *tip)
	renderCalculation(c)
	return nil
}

// calcREPL is the calculator screen: inputs, a result card and the
// in-memory history with its statistics. The history lives only for the
// duration of the session.
func calcREPL() error {
	history := calculator.NewHistory()
	people := strconv.Itoa(calculator.DefaultPeople)
	total := "0"
	tip := calculator.DefaultTip

	fmt.Println("splitmate calculator. Commands: people N, total X, tip PCT, add, rm ID, clear, list, stats, quit")
	current := func() calculator.Calculation {
		return calculator.Compute(calculator.ParsePeople(people), calculator.ParseTotal(total), tip)
	}
	renderCalculation(current())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd := fields[0]
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}

		switch cmd {
		case "people":
			people = arg
			renderCalculation(current())
		case "total":
			total = arg
			renderCalculation(current())
		case "tip":
			pct, err := strconv.Atoi(arg)
			if err != nil || !validTip(pct) {
				fmt.Println("tip must be one of 0, 10, 15, 20")
				continue
			}
			tip = calculator.ToggleTip(tip, pct)
			renderCalculation(current())
		case "add":
			entry := history.Commit(current())
			fmt.Printf("saved %s\n", entry.ID)
			people = strconv.Itoa(calculator.DefaultPeople)
			total = "0"
			tip = calculator.DefaultTip
		case "rm":
			if !history.Remove(arg) {
				fmt.Println("no such entry")
			}
		case "clear":
			history.Clear()
		case "list":
			for _, e := range history.Entries() {
				fmt.Printf("%s  %d people, %.2f total, tip %.2f -> %.2f each  (%s)\n",
					e.ID, e.People, e.Total, e.Tip, e.PerPerson, e.CreatedAt.Format(time.Kitchen))
			}
		case "stats":
			s := history.Stats()
			fmt.Printf("entries: %d  average per person: %.2f  tips total: %.2f\n",
				s.Count, s.AveragePerPerson, s.TipTotal)
		case "quit", "exit", "q":
			return nil
		default:
			fmt.Println("unknown command")
		}
	}
}

func validTip(pct int) bool {
	if pct == 0 {
		return true
	}
	for _, preset := range calculator.TipPresets {
		if pct == preset {
			return true
		}
	}
	return false
}

func renderCalculation(c calculator.Calculation) {
	fmt.Printf("%d people, total %.2f", c.People, c.Total)
	if c.TipPercent > 0 {
		fmt.Printf(" + %d%% tip (%.2f)", c.TipPercent, c.TipAmount)
	}
	fmt.Printf(" = %.2f  ->  %.2f per person\n", c.TotalWithTip, c.PerPerson)
}

func renderDashboard(d *service.Dashboard) {
	fmt.Printf("Total expenses: %.2f\n", d.Total)
	if len(d.ByPayer) > 0 {
		fmt.Println("\nBy payer:")
		for _, p := range d.ByPayer {
			fmt.Printf("  %s\t%.2f\n", payerLabel(p.Payer), p.Total)
		}
	}
	fmt.Println()
	renderExpenses(d.Expenses)
}

func renderExpenses(expenses []models.Expense) {
	if len(expenses) == 0 {
		fmt.Println("No expenses.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tAMOUNT\tPAYER\tDATE")
	for _, e := range expenses {
		payer := report.UnknownPayer
		if e.PersonPaying != nil {
			payer = strconv.Itoa(*e.PersonPaying)
		}
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\n", e.Name, e.AmountValue(), payerLabel(payer), shortDate(e.Date))
	}
	w.Flush()
}

func payerLabel(payer string) string {
	if payer == report.UnknownPayer {
		return "unknown"
	}
	return "user " + payer
}

func shortDate(iso string) string {
	if len(iso) >= 10 {
		return iso[:10]
	}
	return iso
}

func promptCredentials(username string) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		username = strings.TrimSpace(line)
	}
	fmt.Print("Password: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", "", err
	}
	return username, strings.TrimRight(line, "\r\n"), nil
}
