package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/core"
	"budget/internal/services"
	"budget/internal/worker"
)

const usage = `Usage: budget <command> [flags]

Commands:
  register   -name NAME -email EMAIL -password PASS   create an account and log in
  login      -email EMAIL -password PASS              log in
  logout                                              log out
  whoami                                              show the active session
  account    delete                                   delete the active account and its data

  category   add -name NAME                           create a category
  category   list                                     list categories
  category   search -term TERM                        search categories by name
  category   delete -id ID                            delete an unused category

  expense    add -category ID -amount N -description TEXT
             [-date yyyy-MM-dd] [-time HH:mm] [-receipt FILE]
  expense    list [-from yyyy-MM-dd -to yyyy-MM-dd]
  expense    delete -id ID

  budget     set -month yyyy-MM -min N -max N         set (or overwrite) a monthly budget
  budget     show [-month yyyy-MM]                    show budget and spending status

  report     month [-month yyyy-MM]                   month total and category breakdown
  report     range -from yyyy-MM-dd -to yyyy-MM-dd    arbitrary range breakdown
  report     average                                  average budget over all months
  report     year -year YYYY                          budgets of a year
`

// app bundles the wired services plus the per-screen queues every
// command dispatches through.
type app struct {
	auth       *services.AuthService
	categories *services.CategoryService
	expenses   *services.ExpenseService
	budgets    *services.BudgetService
	reports    *services.ReportService
	queues     *worker.Group
}

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := cli.SetupLogger(level)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store := cli.OpenStore(logger, cfg.DBPath)
	defer store.Close()

	sessions := cli.NewSessionManager(cfg.SessionPath)
	queues := worker.NewGroup(context.Background())

	a := &app{
		auth:       services.NewAuthService(store, sessions),
		categories: services.NewCategoryService(store),
		expenses:   services.NewExpenseService(store, cfg.ReceiptsDir),
		budgets:    services.NewBudgetService(store),
		reports:    services.NewReportService(store),
		queues:     queues,
	}

	err := a.run(os.Args[1:])
	if shutdownErr := queues.Shutdown(); shutdownErr != nil {
		logger.Warn("Queue shutdown", "error", shutdownErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) run(args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	switch args[0] {
	case "register":
		return a.register(args[1:])
	case "login":
		return a.login(args[1:])
	case "logout":
		return a.queues.Queue("auth").Do(a.auth.Logout)
	case "whoami":
		return a.whoami()
	case "account":
		return a.account(args[1:])
	case "category":
		return a.category(args[1:])
	case "expense":
		return a.expense(args[1:])
	case "budget":
		return a.budget(args[1:])
	case "report":
		return a.report(args[1:])
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func (a *app) register(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (min 6 characters)")
	fs.Parse(args)

	return a.queues.Queue("auth").Do(func(ctx context.Context) error {
		u, err := a.auth.Register(ctx, *name, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("registered %s <%s> (user %d)\n", u.Name, u.Email, u.ID)
		return nil
	})
}

func (a *app) login(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	return a.queues.Queue("auth").Do(func(ctx context.Context) error {
		u, err := a.auth.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s <%s>\n", u.Name, u.Email)
		return nil
	})
}

func (a *app) whoami() error {
	return a.queues.Queue("auth").Do(func(ctx context.Context) error {
		u, err := a.auth.CurrentUser(ctx)
		if errors.Is(err, services.ErrNotLoggedIn) {
			fmt.Println("not logged in")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> (user %d)\n", u.Name, u.Email, u.ID)
		return nil
	})
}

func (a *app) account(args []string) error {
	if len(args) == 0 || args[0] != "delete" {
		return errors.New("usage: budget account delete")
	}
	return a.queues.Queue("auth").Do(func(ctx context.Context) error {
		u, err := a.auth.CurrentUser(ctx)
		if err != nil {
			return err
		}
		if err := a.auth.DeleteAccount(ctx, u.ID); err != nil {
			return err
		}
		fmt.Printf("account %s deleted\n", u.Email)
		return nil
	})
}

func (a *app) category(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: budget category add|list|search|delete")
	}
	queue := a.queues.Queue("category")

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("category add", flag.ExitOnError)
		name := fs.String("name", "", "category name")
		fs.Parse(args[1:])
		return queue.Do(func(ctx context.Context) error {
			c, err := a.categories.Add(ctx, *name)
			if err != nil {
				return err
			}
			fmt.Printf("category %q created (id %d)\n", c.Name, c.ID)
			return nil
		})
	case "list":
		return queue.Do(func(ctx context.Context) error {
			cats, err := a.categories.List(ctx)
			if err != nil {
				return err
			}
			for _, c := range cats {
				fmt.Printf("%4d  %s\n", c.ID, c.Name)
			}
			return nil
		})
	case "search":
		fs := flag.NewFlagSet("category search", flag.ExitOnError)
		term := fs.String("term", "", "name fragment")
		fs.Parse(args[1:])
		return queue.Do(func(ctx context.Context) error {
			cats, err := a.categories.Search(ctx, *term)
			if err != nil {
				return err
			}
			for _, c := range cats {
				fmt.Printf("%4d  %s\n", c.ID, c.Name)
			}
			return nil
		})
	case "delete":
		fs := flag.NewFlagSet("category delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "category id")
		fs.Parse(args[1:])
		return queue.Do(func(ctx context.Context) error {
			if err := a.categories.Remove(ctx, *id); err != nil {
				return err
			}
			fmt.Printf("category %d deleted\n", *id)
			return nil
		})
	}
	return fmt.Errorf("unknown category subcommand %q", args[0])
}

func (a *app) expense(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: budget expense add|list|delete")
	}
	queue := a.queues.Queue("expense")

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("expense add", flag.ExitOnError)
		categoryID := fs.Int64("category", 0, "category id")
		amount := fs.Float64("amount", 0, "amount spent")
		description := fs.String("description", "", "what the money went to")
		date := fs.String("date", "", "calendar day (yyyy-MM-dd, default today)")
		clock := fs.String("time", "", "time of day (HH:mm, default now)")
		receipt := fs.String("receipt", "", "receipt photo to attach")
		fs.Parse(args[1:])

		return queue.Do(func(ctx context.Context) error {
			u, err := a.auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			day := core.Day(time.Now())
			if *date != "" {
				if day, err = time.ParseInLocation(core.DateFormat, *date, time.Local); err != nil {
					return fmt.Errorf("invalid -date: %w", err)
				}
			}
			at := *clock
			if at == "" {
				at = time.Now().Format(core.TimeFormat)
			}
			id, err := a.expenses.Add(ctx, core.Expense{
				UserID:      u.ID,
				CategoryID:  *categoryID,
				Date:        day,
				Time:        at,
				Description: *description,
				Amount:      *amount,
			}, *receipt)
			if err != nil {
				return err
			}
			fmt.Printf("expense %d recorded: %.2f on %s\n", id, *amount, day.Format(core.DateFormat))
			return nil
		})
	case "list":
		fs := flag.NewFlagSet("expense list", flag.ExitOnError)
		from := fs.String("from", "", "range start (yyyy-MM-dd)")
		to := fs.String("to", "", "range end (yyyy-MM-dd)")
		fs.Parse(args[1:])

		return queue.Do(func(ctx context.Context) error {
			u, err := a.auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			var expenses []core.Expense
			if *from != "" || *to != "" {
				start, end, err := parseRange(*from, *to)
				if err != nil {
					return err
				}
				expenses, err = a.expenses.ListByRange(ctx, u.ID, start, end)
				if err != nil {
					return err
				}
			} else if expenses, err = a.expenses.ListAll(ctx, u.ID); err != nil {
				return err
			}
			for _, e := range expenses {
				photo := ""
				if e.PhotoPath != "" {
					photo = "  [receipt]"
				}
				fmt.Printf("%4d  %s %s  %8.2f  cat %d  %s%s\n",
					e.ID, e.Date.Format(core.DateFormat), e.Time, e.Amount, e.CategoryID, e.Description, photo)
			}
			return nil
		})
	case "delete":
		fs := flag.NewFlagSet("expense delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "expense id")
		fs.Parse(args[1:])
		return queue.Do(func(ctx context.Context) error {
			if err := a.expenses.Remove(ctx, *id); err != nil {
				return err
			}
			fmt.Printf("expense %d deleted\n", *id)
			return nil
		})
	}
	return fmt.Errorf("unknown expense subcommand %q", args[0])
}

func (a *app) budget(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: budget budget set|show")
	}
	queue := a.queues.Queue("budget")

	switch args[0] {
	case "set":
		fs := flag.NewFlagSet("budget set", flag.ExitOnError)
		month := fs.String("month", core.CurrentMonthKey(), "month-year key (yyyy-MM)")
		min := fs.Float64("min", 0, "minimum spending threshold")
		max := fs.Float64("max", 0, "maximum spending threshold")
		fs.Parse(args[1:])

		return queue.Do(func(ctx context.Context) error {
			u, err := a.auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			id, err := a.budgets.Set(ctx, core.Budget{
				UserID:      u.ID,
				MonthYear:   *month,
				MinSpending: *min,
				MaxSpending: *max,
			})
			if err != nil {
				return err
			}
			fmt.Printf("budget %d set for %s: %.2f - %.2f\n", id, *month, *min, *max)
			return nil
		})
	case "show":
		fs := flag.NewFlagSet("budget show", flag.ExitOnError)
		month := fs.String("month", core.CurrentMonthKey(), "month-year key (yyyy-MM)")
		fs.Parse(args[1:])

		return queue.Do(func(ctx context.Context) error {
			u, err := a.auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			status, err := a.budgets.Status(ctx, u.ID, *month)
			if err != nil {
				return err
			}
			fmt.Printf("%s: spent %.2f\n", core.FormatMonthKeyDisplay(*month), status.Spent)
			if status.Budget == nil {
				fmt.Println("no budget set for this month")
				return nil
			}
			fmt.Printf("budget %.2f - %.2f, status: %s\n",
				status.Budget.MinSpending, status.Budget.MaxSpending, status.Level)
			return nil
		})
	}
	return fmt.Errorf("unknown budget subcommand %q", args[0])
}

func (a *app) report(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: budget report month|range|average|year")
	}
	queue := a.queues.Queue("report")

	switch args[0] {
	case "month":
		fs := flag.NewFlagSet("report month", flag.ExitOnError)
		month := fs.String("month", core.CurrentMonthKey(), "month-year key (yyyy-MM)")
		fs.Parse(args[1:])
		return queue.Do(func(ctx context.Context) error {
			u, err := a.auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			overview, err := a.reports.MonthOverview(ctx, u.ID, *month)
			if err != nil {
				return err
			}
			printOverview(core.FormatMonthKeyDisplay(*month), overview)
			return nil
		})
	case "range":
		fs := flag.NewFlagSet("report range", flag.ExitOnError)
		from := fs.String("from", "", "range start (yyyy-MM-dd)")
		to := fs.String("to", "", "range end (yyyy-MM-dd)")
		fs.Parse(args[1:])
		return queue.Do(func(ctx context.Context) error {
			u, err := a.auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			start, end, err := parseRange(*from, *to)
			if err != nil {
				return err
			}
			overview, err := a.reports.RangeOverview(ctx, u.ID, start, end)
			if err != nil {
				return err
			}
			printOverview(overview.MonthYear, overview)
			return nil
		})
	case "average":
		return queue.Do(func(ctx context.Context) error {
			u, err := a.auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			avg, err := a.budgets.Average(ctx, u.ID)
			if err != nil {
				return err
			}
			fmt.Printf("average budget: %.2f\n", avg)
			return nil
		})
	case "year":
		fs := flag.NewFlagSet("report year", flag.ExitOnError)
		year := fs.Int("year", time.Now().Year(), "calendar year")
		fs.Parse(args[1:])
		return queue.Do(func(ctx context.Context) error {
			u, err := a.auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			budgets, err := a.budgets.ForYear(ctx, u.ID, *year)
			if err != nil {
				return err
			}
			for _, b := range budgets {
				fmt.Printf("%s  %.2f - %.2f\n", b.MonthYear, b.MinSpending, b.MaxSpending)
			}
			return nil
		})
	}
	return fmt.Errorf("unknown report subcommand %q", args[0])
}

func printOverview(label string, overview core.MonthOverview) {
	fmt.Printf("%s: total %.2f\n", label, overview.Total)
	for _, cs := range overview.ByCategory {
		name := cs.Name
		if name == "" {
			name = fmt.Sprintf("category %d", cs.CategoryID)
		}
		fmt.Printf("  %-20s %10.2f\n", name, cs.Total)
	}
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(core.DateFormat, from, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -from: %w", err)
	}
	end, err := time.ParseInLocation(core.DateFormat, to, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -to: %w", err)
	}
	return start, end, nil
}
