// Package gateway is the single entry point the UI talks to. Each call waits
// out an artificial latency and then delegates to the store that owns the
// data.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/psytech/suvichar/internal/catalog"
	"github.com/psytech/suvichar/internal/downloads"
	"github.com/psytech/suvichar/internal/library"
	"github.com/psytech/suvichar/internal/notification"
	"github.com/psytech/suvichar/internal/premium"
	"github.com/psytech/suvichar/internal/profile"
	"github.com/psytech/suvichar/internal/quotes"
	"github.com/psytech/suvichar/internal/session"
)

var (
	// ErrNoProfile means the main screen was requested before a profile exists.
	ErrNoProfile = errors.New("no profile stored")
	// ErrPremiumRequired is returned when a free user edits premium-only fields.
	ErrPremiumRequired = errors.New("premium subscription required")
	// ErrTemplateNotFound is returned for unknown template ids.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrNoQuote is returned when a category has no quotes.
	ErrNoQuote = errors.New("no quote for category")
	// ErrProfileOwner is returned when the stored profile belongs to a
	// different phone than the session.
	ErrProfileOwner = errors.New("profile belongs to another phone")
)

// Deps lists the collaborators the gateway fans out to.
type Deps struct {
	Sessions  *session.Store
	Profiles  *profile.Store
	Premium   *premium.Store
	Catalog   *catalog.Catalog
	Quotes    *quotes.Pool
	Downloads *downloads.Store
	Library   library.Library
	Processor premium.Processor
	Notifier  notification.Notifier
	Latency   Latency
	Logger    *slog.Logger
}

// Gateway exposes the app's operations with uniform latency.
type Gateway struct {
	sessions  *session.Store
	profiles  *profile.Store
	premium   *premium.Store
	catalog   *catalog.Catalog
	quotes    *quotes.Pool
	downloads *downloads.Store
	library   library.Library
	processor premium.Processor
	notifier  notification.Notifier
	latency   Latency
	logger    *slog.Logger
}

// New builds a gateway.
func New(d Deps) *Gateway {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	processor := d.Processor
	if processor == nil {
		processor = premium.StaticProcessor{}
	}
	return &Gateway{
		sessions:  d.Sessions,
		profiles:  d.Profiles,
		premium:   d.Premium,
		catalog:   d.Catalog,
		quotes:    d.Quotes,
		downloads: d.Downloads,
		library:   d.Library,
		processor: processor,
		notifier:  d.Notifier,
		latency:   d.Latency,
		logger:    logger,
	}
}

// SendCode normalizes raw and asks the session store to send a code. It
// returns the normalized phone.
func (g *Gateway) SendCode(ctx context.Context, raw string) (string, error) {
	if err := g.latency.wait(ctx); err != nil {
		return "", err
	}
	phone, err := session.NormalizePhone(raw)
	if err != nil {
		return "", err
	}
	if err := g.sessions.RequestCode(ctx, phone); err != nil {
		return "", err
	}
	return phone, nil
}

// VerifyCode mints a session for raw and resets the stored premium state to
// free.
func (g *Gateway) VerifyCode(ctx context.Context, raw, code string) (session.Token, error) {
	if err := g.latency.wait(ctx); err != nil {
		return session.Token{}, err
	}
	phone, err := session.NormalizePhone(raw)
	if err != nil {
		return session.Token{}, err
	}
	token, err := g.sessions.VerifyCode(ctx, phone, code)
	if err != nil {
		return session.Token{}, err
	}
	if _, err := g.premium.Save(ctx, premium.Free()); err != nil {
		return session.Token{}, fmt.Errorf("reset premium: %w", err)
	}
	return token, nil
}

// LoadProfile returns the stored profile if any.
func (g *Gateway) LoadProfile(ctx context.Context) (profile.Profile, bool, error) {
	if err := g.latency.wait(ctx); err != nil {
		return profile.Profile{}, false, err
	}
	p, ok := g.profiles.Load(ctx)
	return p, ok, nil
}

// SaveProfile stores p. Free users may not change the premium-only fields;
// whatever is already stored for them is kept as is.
func (g *Gateway) SaveProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	if err := g.latency.wait(ctx); err != nil {
		return profile.Profile{}, err
	}
	isPremium, err := g.premium.IsPremium(ctx)
	if err != nil {
		return profile.Profile{}, err
	}
	if !isPremium {
		current, _ := g.profiles.Load(ctx)
		if p.About != current.About || p.Contact != current.Contact || p.Organization != current.Organization {
			return profile.Profile{}, ErrPremiumRequired
		}
	}
	return g.profiles.Save(ctx, p)
}

// GetOrCreateProfile returns the stored profile or creates the default one.
func (g *Gateway) GetOrCreateProfile(ctx context.Context, phone string, purpose profile.Purpose) (profile.Profile, error) {
	if err := g.latency.wait(ctx); err != nil {
		return profile.Profile{}, err
	}
	return g.profiles.GetOrCreate(ctx, phone, purpose)
}

// ListTemplates returns every template in the given view.
func (g *Gateway) ListTemplates(ctx context.Context, v catalog.Variant) ([]catalog.Template, error) {
	if err := g.latency.wait(ctx); err != nil {
		return nil, err
	}
	return g.catalog.ListAll(v), nil
}

// Templates returns the current user's view, filtered by category when one
// is given.
func (g *Gateway) Templates(ctx context.Context, category string) ([]catalog.Template, catalog.Variant, error) {
	if err := g.latency.wait(ctx); err != nil {
		return nil, catalog.Reduced, err
	}
	v, err := g.variant(ctx)
	if err != nil {
		return nil, v, err
	}
	list, err := g.filter(v, category)
	return list, v, err
}

// Template returns one template in the current user's view.
func (g *Gateway) Template(ctx context.Context, id string) (catalog.Template, error) {
	if err := g.latency.wait(ctx); err != nil {
		return catalog.Template{}, err
	}
	v, err := g.variant(ctx)
	if err != nil {
		return catalog.Template{}, err
	}
	t, ok := g.catalog.GetByID(v, id)
	if !ok {
		return catalog.Template{}, ErrTemplateNotFound
	}
	return t, nil
}

// IsPremium reports the entitlement, persisting an expiry downgrade.
func (g *Gateway) IsPremium(ctx context.Context) (bool, error) {
	if err := g.latency.wait(ctx); err != nil {
		return false, err
	}
	return g.premium.IsPremium(ctx)
}

// GetPremiumState returns the stored state, free by default.
func (g *Gateway) GetPremiumState(ctx context.Context) (premium.State, error) {
	if err := g.latency.wait(ctx); err != nil {
		return premium.State{}, err
	}
	if _, err := g.premium.IsPremium(ctx); err != nil {
		return premium.State{}, err
	}
	return g.premium.GetState(ctx), nil
}

// SavePremiumState overwrites the stored state.
func (g *Gateway) SavePremiumState(ctx context.Context, st premium.State) (premium.State, error) {
	if err := g.latency.wait(ctx); err != nil {
		return premium.State{}, err
	}
	return g.premium.Save(ctx, st)
}

// Upgrade runs the simulated checkout for plan and activates premium.
func (g *Gateway) Upgrade(ctx context.Context, plan premium.Plan, phone string) (premium.State, premium.Receipt, error) {
	if err := g.latency.wait(ctx); err != nil {
		return premium.State{}, premium.Receipt{}, err
	}
	st, receipt, err := g.premium.Purchase(ctx, g.processor, plan)
	if err != nil {
		return premium.State{}, receipt, err
	}
	if g.notifier != nil {
		if err := g.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPremiumActivated,
			Destination: phone,
			Body:        fmt.Sprintf("%s plan active, reference %s", plan, receipt.Reference),
		}); err != nil {
			g.logger.WarnContext(ctx, "premium notification failed", slog.Any("error", err))
		}
	}
	return st, receipt, nil
}

// ClearPremium drops the premium record.
func (g *Gateway) ClearPremium(ctx context.Context) error {
	if err := g.latency.wait(ctx); err != nil {
		return err
	}
	return g.premium.Clear(ctx)
}

// CategoryTab is one entry in the main screen's category strip.
type CategoryTab struct {
	ID    catalog.Category `json:"id"`
	Label string           `json:"label"`
	Color string           `json:"color"`
}

// Home is everything the main screen renders at once.
type Home struct {
	Profile    profile.Profile    `json:"profile"`
	IsPremium  bool               `json:"isPremium"`
	Variant    string             `json:"variant"`
	Category   catalog.Category   `json:"category,omitempty"`
	Categories []CategoryTab      `json:"categories"`
	Templates  []catalog.Template `json:"templates"`
}

// Home loads the main-screen bundle. Without a stored profile it returns
// ErrNoProfile and the client goes back to sign-in.
func (g *Gateway) Home(ctx context.Context, category string) (Home, error) {
	if err := g.latency.wait(ctx); err != nil {
		return Home{}, err
	}
	p, ok := g.profiles.Load(ctx)
	if !ok {
		return Home{}, ErrNoProfile
	}
	v, err := g.variant(ctx)
	if err != nil {
		return Home{}, err
	}
	list, err := g.filter(v, category)
	if err != nil {
		return Home{}, err
	}
	return Home{
		Profile:    p,
		IsPremium:  v == catalog.Full,
		Variant:    v.String(),
		Category:   catalog.Category(category),
		Categories: Categories(),
		Templates:  list,
	}, nil
}

// Categories lists the category strip in display order.
func Categories() []CategoryTab {
	cats := catalog.Categories()
	tabs := make([]CategoryTab, 0, len(cats))
	for _, c := range cats {
		tabs = append(tabs, CategoryTab{ID: c, Label: c.Label(), Color: catalog.FallbackColor(c)})
	}
	return tabs
}

// RandomQuote picks a quote for category.
func (g *Gateway) RandomQuote(ctx context.Context, category string) (string, error) {
	if err := g.latency.wait(ctx); err != nil {
		return "", err
	}
	cat, err := catalog.ParseCategory(category)
	if err != nil {
		return "", err
	}
	q, ok := g.quotes.Random(cat)
	if !ok {
		return "", ErrNoQuote
	}
	return q, nil
}

// SaveToLibrary stores the exported image and records the saved reference at
// the front of the downloads list. A library failure leaves downloads as is.
func (g *Gateway) SaveToLibrary(ctx context.Context, ref string) (string, []string, error) {
	if err := g.latency.wait(ctx); err != nil {
		return "", nil, err
	}
	saved, err := g.library.Save(ctx, ref)
	if err != nil {
		return "", nil, err
	}
	refs, err := g.downloads.Add(ctx, saved)
	if err != nil {
		return saved, nil, err
	}
	g.logger.InfoContext(ctx, "card saved", slog.String("asset", saved))
	return saved, refs, nil
}

// Downloads lists saved asset references, most recent first.
func (g *Gateway) Downloads(ctx context.Context) ([]string, error) {
	if err := g.latency.wait(ctx); err != nil {
		return nil, err
	}
	return g.downloads.List(ctx), nil
}

func (g *Gateway) variant(ctx context.Context) (catalog.Variant, error) {
	isPremium, err := g.premium.IsPremium(ctx)
	if err != nil {
		return catalog.Reduced, err
	}
	return catalog.VariantFor(isPremium), nil
}

func (g *Gateway) filter(v catalog.Variant, category string) ([]catalog.Template, error) {
	if category == "" {
		return g.catalog.ListAll(v), nil
	}
	cat, err := catalog.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	return g.catalog.ListByCategory(v, cat), nil
}
