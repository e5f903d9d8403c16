package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/prohmpiriya/ecom-storefront/internal/apiclient"
	"github.com/prohmpiriya/ecom-storefront/internal/catalog"
	"github.com/prohmpiriya/ecom-storefront/internal/credential"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
	"github.com/prohmpiriya/ecom-storefront/internal/lifecycle"
	"github.com/prohmpiriya/ecom-storefront/internal/session"
	"github.com/prohmpiriya/ecom-storefront/pkg/config"
	"github.com/prohmpiriya/ecom-storefront/pkg/logger"
)

const usage = `usage: storefront-cli <command> [flags]

commands:
  login -email E -password P     sign in
  logout                          end the session
  whoami                          print the current identity
  products                        list the catalog visible to you
  pending                         list products awaiting approval (admin)
  create-product -name N -price P -category C [-stock S] [-description D] [-image U]
  approve <id>                    approve a product (admin)
  reject <id>                     reject a product (admin)
  delete-product <id>             soft delete a product you own
`

// cli is one terminal session against the remote API
type cli struct {
	out      io.Writer
	session  *session.Manager
	products *catalog.ProductService
	workflow *lifecycle.Workflow
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: "warn", ServiceName: "storefront-cli"})
	if err != nil {
		log = logger.Nop()
	}
	defer log.Zap().Sync() //nolint:errcheck

	c := newCLI(cfg, log, os.Stdout)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.session.Bootstrap(ctx)
	if err := c.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", describe(err))
		os.Exit(1)
	}
}

func newCLI(cfg *config.Config, log *logger.Logger, out io.Writer) *cli {
	client := apiclient.New(apiclient.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout, Logger: log})
	auth := catalog.NewAuthAPI(client.Anonymous())

	mgr := session.NewManager(session.Config{
		Store: credential.NewStore(credential.NewFileBackend(cfg.CLI.CredentialFile)),
		API:   auth,
		Navigator: session.NavigatorFunc(func(_ context.Context, path string) {
			fmt.Fprintf(out, "→ %s\n", path)
		}),
		Logger: log,
	})

	api := client.Bind(mgr)
	products := catalog.NewProductService(api)
	return &cli{
		out:      out,
		session:  mgr,
		products: products,
		workflow: lifecycle.NewWorkflow(products, catalog.NewCategoryService(api), mgr),
	}
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return c.login(ctx, args)
	case "logout":
		return c.session.Logout(ctx)
	case "whoami":
		return c.whoami()
	case "products":
		items, err := c.workflow.Catalog(ctx)
		if err != nil {
			return err
		}
		c.printProducts(items)
		return nil
	case "pending":
		items, err := c.products.ListPending(ctx)
		if err != nil {
			return err
		}
		c.printProducts(items)
		return nil
	case "create-product":
		return c.createProduct(ctx, args)
	case "approve", "reject":
		id, err := productID(args)
		if err != nil {
			return err
		}
		p, err := c.workflow.Decide(ctx, id, cmd == "approve")
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "product %d is now %s\n", p.ID, p.Status)
		return nil
	case "delete-product":
		id, err := productID(args)
		if err != nil {
			return err
		}
		if err := c.workflow.Remove(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "product %d deleted\n", id)
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("STOREFRONT_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := c.session.Login(ctx, dto.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "signed in as %s (%s)\n", id.Email, id.Role)
	return nil
}

func (c *cli) whoami() error {
	id := c.session.Current()
	if id == nil {
		fmt.Fprintln(c.out, "anonymous")
		return nil
	}
	fmt.Fprintf(c.out, "%s %s <%s> %s\n", id.FirstName, id.LastName, id.Email, id.Role)
	return nil
}

func (c *cli) createProduct(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-product", flag.ContinueOnError)
	var req dto.CreateProductRequest
	fs.StringVar(&req.Name, "name", "", "product name")
	fs.StringVar(&req.Description, "description", "", "description")
	fs.Float64Var(&req.Price, "price", 0, "unit price")
	fs.IntVar(&req.StockQuantity, "stock", 0, "stock quantity")
	fs.StringVar(&req.ImageURL, "image", "", "image url")
	fs.Int64Var(&req.CategoryID, "category", 0, "category id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := c.workflow.Submit(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "product %d submitted (%s)\n", p.ID, p.Status)
	return nil
}

func (c *cli) printProducts(items []domain.Product) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK\tSTATUS\tOWNER")
	for _, p := range items {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\t%s\t%s\n", p.ID, p.Name, p.Price, p.StockQuantity, p.Status, p.CreatedByEmail)
	}
	tw.Flush()
}

func productID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one product id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", args[0])
	}
	return id, nil
}

// describe prefers the server's user-facing message
func describe(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}
