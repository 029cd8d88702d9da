package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/isdelr/storefront/internal/config"
	"github.com/isdelr/storefront/internal/feed"
	"github.com/isdelr/storefront/internal/models"
	"github.com/isdelr/storefront/internal/storefront"
	"github.com/shopspring/decimal"
)

var errUsage = errors.New("usage")

type command struct {
	usage string
	run   func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"products":   {"products [-page N] [-limit N] [-search TEXT] [-category NAME]", (*app).products},
	"categories": {"categories [-page N] [-limit N]", (*app).categories},
	"product":    {"product ID", (*app).product},
	"create":     {"create -name NAME -category NAME -price AMOUNT [-description TEXT] [-image URL] [-in-stock]", (*app).create},
	"update":     {"update ID [-name NAME] [-category NAME] [-price AMOUNT] [-description TEXT] [-image URL] [-in-stock=BOOL]", (*app).update},
	"delete":     {"delete ID", (*app).deleteProduct},
	"login":      {"login -email EMAIL -password PASSWORD", (*app).login},
	"register":   {"register -name NAME -email EMAIL -password PASSWORD [-confirm PASSWORD]", (*app).register},
	"whoami":     {"whoami", (*app).whoami},
	"refresh":    {"refresh", (*app).refresh},
	"logout":     {"logout [-revoke]", (*app).logout},
	"watch":      {"watch", (*app).watch},
}

type app struct {
	cfg     *config.ClientConfig
	sources storefront.Sources
	account *storefront.Account
	out     io.Writer

	// Fetch state of the listing and detail views.
	listing storefront.Request[models.Paginated[models.Product]]
	detail  storefront.Request[models.Product]
}

func newApp(cfg *config.ClientConfig, sources storefront.Sources, out io.Writer) *app {
	return &app{cfg: cfg, sources: sources, account: storefront.NewAccount(sources.Auth), out: out}
}

// run dispatches a subcommand and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.out, "unknown command %q\n", args[0])
		a.usage()
		return 2
	}
	err := cmd.run(a, ctx, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprintf(a.out, "usage: storefront %s\n", cmd.usage)
		return 2
	default:
		a.printError(err)
		return 1
	}
}

func (a *app) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(a.out, "usage: storefront COMMAND [flags]")
	fmt.Fprintln(a.out, "commands:")
	for _, name := range names {
		fmt.Fprintf(a.out, "  %s\n", commands[name].usage)
	}
}

func (a *app) printError(err error) {
	apiErr, ok := models.AsAPIError(err)
	if !ok {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "error (%d %s): %s\n", apiErr.Status, apiErr.Kind(), apiErr.Message)
	fields := apiErr.FieldMessages()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "  %s: %s\n", k, fields[k])
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// idArg pulls the leading positional ID off args.
func idArg(args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, errUsage
	}
	return args[0], args[1:], nil
}

func (a *app) listPage(ctx context.Context, name string, args []string) (*flag.FlagSet, models.Paginated[models.Product], error) {
	fs := newFlagSet(name, a.out)
	page := fs.Int("page", storefront.DefaultPage, "page number")
	limit := fs.Int("limit", storefront.DefaultLimit, "items per page")
	fs.String("search", "", "filter the loaded page by name or description")
	fs.String("category", "", "filter the loaded page by category")
	if err := fs.Parse(args); err != nil {
		return nil, models.Paginated[models.Product]{}, err
	}
	res, err := a.listing.Execute(ctx, func(ctx context.Context) (models.Paginated[models.Product], error) {
		return a.sources.Products.GetProducts(ctx, *page, *limit)
	})
	return fs, res, err
}

func (a *app) products(ctx context.Context, args []string) error {
	fs, res, err := a.listPage(ctx, "products", args)
	if err != nil {
		return err
	}
	search := fs.Lookup("search").Value.String()
	category := fs.Lookup("category").Value.String()
	items := storefront.Filter(res.Items, search, category)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range items {
		stock := "out"
		if p.InStock {
			stock = "in"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), stock)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d of %d (%d shown, %d total)\n", res.Page, res.TotalPages, len(items), res.Total)
	return nil
}

func (a *app) categories(ctx context.Context, args []string) error {
	_, res, err := a.listPage(ctx, "categories", args)
	if err != nil {
		return err
	}
	for _, c := range storefront.Categories(res.Items) {
		fmt.Fprintln(a.out, c)
	}
	return nil
}

func (a *app) product(ctx context.Context, args []string) error {
	id, _, err := idArg(args)
	if err != nil {
		return err
	}
	p, err := a.detail.Execute(ctx, func(ctx context.Context) (models.Product, error) {
		return a.sources.Products.GetProductByID(ctx, id)
	})
	if err != nil {
		return err
	}
	return a.printJSON(p)
}

// productFlags binds the product fields shared by create and update.
type productFlags struct {
	name, description, image, category, price *string
	inStock                                   *bool
}

func bindProductFlags(fs *flag.FlagSet) productFlags {
	return productFlags{
		name:        fs.String("name", "", "product name"),
		description: fs.String("description", "", "product description"),
		image:       fs.String("image", "", "image URL"),
		category:    fs.String("category", "", "category"),
		price:       fs.String("price", "", "price, e.g. 19.99"),
		inStock:     fs.Bool("in-stock", false, "whether the product is in stock"),
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	return price, nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := newFlagSet("create", a.out)
	f := bindProductFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *f.price == "" {
		return errUsage
	}
	price, err := parsePrice(*f.price)
	if err != nil {
		return err
	}
	p, err := a.sources.Products.CreateProduct(ctx, models.ProductInput{
		Name:        *f.name,
		Description: *f.description,
		Price:       price,
		ImageURL:    *f.image,
		Category:    *f.category,
		InStock:     *f.inStock,
	})
	if err != nil {
		return err
	}
	return a.printJSON(p)
}

// buildPatch includes only the flags given on the command line.
func buildPatch(fs *flag.FlagSet, f productFlags) (models.ProductPatch, error) {
	var patch models.ProductPatch
	var err error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			patch.Name = f.name
		case "description":
			patch.Description = f.description
		case "image":
			patch.ImageURL = f.image
		case "category":
			patch.Category = f.category
		case "in-stock":
			patch.InStock = f.inStock
		case "price":
			var price decimal.Decimal
			if price, err = parsePrice(*f.price); err == nil {
				patch.Price = &price
			}
		}
	})
	return patch, err
}

func (a *app) update(ctx context.Context, args []string) error {
	id, rest, err := idArg(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("update", a.out)
	f := bindProductFlags(fs)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	patch, err := buildPatch(fs, f)
	if err != nil {
		return err
	}
	if patch.Empty() {
		return errUsage
	}
	p, err := a.sources.Products.UpdateProduct(ctx, id, patch)
	if err != nil {
		return err
	}
	return a.printJSON(p)
}

func (a *app) deleteProduct(ctx context.Context, args []string) error {
	id, _, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.sources.Products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted product %s\n", id)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login", a.out)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errUsage
	}
	user, err := a.account.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register", a.out)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	confirm := fs.String("confirm", "", "password confirmation, defaults to -password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *confirm == "" {
		*confirm = *password
	}
	user, err := a.account.Register(ctx, models.Registration{
		Name:                 *name,
		Email:                *email,
		Password:             *password,
		PasswordConfirmation: *confirm,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "registered and signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *app) whoami(ctx context.Context, _ []string) error {
	if a.account.Bootstrap(ctx) != storefront.StatusAuthenticated {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}
	user, _ := a.account.User()
	return a.printJSON(user)
}

func (a *app) refresh(ctx context.Context, _ []string) error {
	if err := a.sources.Auth.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "access token refreshed")
	return nil
}

func (a *app) logout(ctx context.Context, args []string) error {
	fs := newFlagSet("logout", a.out)
	revoke := fs.Bool("revoke", false, "also invalidate the refresh token on the backend")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *revoke {
		if err := a.sources.Auth.Revoke(ctx); err != nil {
			return err
		}
	} else {
		a.account.Logout()
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *app) watch(ctx context.Context, _ []string) error {
	if a.sources.Mock {
		return errors.New("watch needs a backend; set STOREFRONT_API_URL")
	}
	events, err := feed.Subscribe(ctx, a.cfg.BaseURL())
	if err != nil {
		return err
	}
	for ev := range events {
		fmt.Fprintf(a.out, "%s %s %s\n", ev.OccurredAt.Format("15:04:05"), ev.Action, ev.ProductID)
	}
	return nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
