// Package profile is the view controller: it decides between the login and
// the profile view and, for the profile, runs both chart pipelines.
//
//	session gate -> platform fetch -> aggregate -> scale
//
// Fetch failures never reach the core. They surface as ErrNoData and the
// controller falls back to the login view, the way the page fell back to
// the login form.
package profile

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rewired-gh/xpgraph/internal/aggregate"
	"github.com/rewired-gh/xpgraph/internal/logger"
	"github.com/rewired-gh/xpgraph/internal/models"
	"github.com/rewired-gh/xpgraph/internal/scale"
	"github.com/rewired-gh/xpgraph/internal/session"
)

var (
	// ErrNotAuthenticated is returned by Show when no token is present.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoData wraps any failure to fetch profile data.
	ErrNoData = errors.New("no data available")
)

// Source is the remote data the controller needs.
type Source interface {
	SignIn(ctx context.Context, login, password string) (string, error)
	FetchUser(ctx context.Context, token string) (*models.User, error)
	FetchTransactions(ctx context.Context, token string) ([]models.Transaction, error)
}

// Options configures chart layout.
type Options struct {
	Canvas scale.Canvas
	// SortChronological orders transactions by createdAt before
	// accumulating. Off by default: the series follows the order received.
	SortChronological bool
}

// Profile is everything the profile view renders.
type Profile struct {
	View     session.View
	User     models.User
	Points   []aggregate.CumulativePoint
	Totals   []aggregate.CategoryTotal
	Timeline scale.TimeSeries
	Projects scale.Bars
	TotalXP  int64
	Count    int
}

// Controller orchestrates the session gate, the data source and the core.
type Controller struct {
	gate   *session.Gate
	source Source
	opts   Options
}

// New creates a Controller. A zero canvas in opts is replaced with
// scale.DefaultCanvas.
func New(gate *session.Gate, source Source, opts Options) *Controller {
	if opts.Canvas == (scale.Canvas{}) {
		opts.Canvas = scale.DefaultCanvas()
	}
	return &Controller{gate: gate, source: source, opts: opts}
}

// ActiveView returns the view implied by the session.
func (c *Controller) ActiveView() session.View {
	return c.gate.ActiveView()
}

// Login signs in with the platform and stores the token.
func (c *Controller) Login(ctx context.Context, login, password string) error {
	if login == "" || password == "" {
		return errors.New("login and password are required")
	}

	token, err := c.source.SignIn(ctx, login, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := c.gate.SignIn(ctx, token); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	logger.Info("Signed in as %s", login)
	return nil
}

// Logout clears the session.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.gate.SignOut(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	logger.Info("Signed out")
	return nil
}

// Show fetches profile data and computes both charts. Without a token it
// returns the login view and ErrNotAuthenticated; when fetching fails it
// returns the login view and an error wrapping ErrNoData.
func (c *Controller) Show(ctx context.Context) (*Profile, error) {
	token, ok := c.gate.Token()
	if !ok {
		return &Profile{View: session.ViewLogin}, ErrNotAuthenticated
	}

	var (
		user *models.User
		txs  []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := c.source.FetchUser(gctx, token)
		if err != nil {
			return fmt.Errorf("fetch user: %w", err)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		t, err := c.source.FetchTransactions(gctx, token)
		if err != nil {
			return fmt.Errorf("fetch transactions: %w", err)
		}
		txs = t
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("Error fetching data: %v", err)
		return &Profile{View: session.ViewLogin}, fmt.Errorf("%w: %w", ErrNoData, err)
	}

	logger.Debug("Fetched %d transactions for %s", len(txs), user.Login)
	return c.build(*user, txs), nil
}

// build runs both pipelines over txs.
func (c *Controller) build(user models.User, txs []models.Transaction) *Profile {
	if c.opts.SortChronological {
		txs = aggregate.SortChronological(txs)
	}

	points := aggregate.Accumulate(txs)
	totals := aggregate.TotalByCategory(txs)

	return &Profile{
		View:     session.ViewProfile,
		User:     user,
		Points:   points,
		Totals:   totals,
		Timeline: scale.ScaleTimeSeries(points, c.opts.Canvas),
		Projects: scale.ScaleCategoryTotals(totals, c.opts.Canvas),
		TotalXP:  aggregate.Sum(txs),
		Count:    len(txs),
	}
}
