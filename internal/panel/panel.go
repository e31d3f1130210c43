package panel

import (
	"context"
	"strings"
	"sync"

	"github.com/mlorentedev/productai/internal/completion"
	"github.com/mlorentedev/productai/internal/product"
	"github.com/mlorentedev/productai/internal/prompt"
)

// Zone is the product-detail extension point the panel renders into.
const Zone = "product.details.after"

const (
	successTitle   = "Success!"
	successMessage = "Product description updated."
	errorTitle     = "Error"
)

// Streamer requests a completion from the backend.
type Streamer interface {
	Stream(ctx context.Context, req completion.Request) (completion.Stream, error)
}

// Notifier shows fire-and-forget toasts.
type Notifier interface {
	Success(title, message string)
	Error(title, message string)
}

// Option configures a Panel.
type Option func(*Panel)

// WithSystemPrompt overrides the system message sent with every request.
func WithSystemPrompt(s string) Option {
	return func(p *Panel) { p.systemPrompt = s }
}

// WithObserver registers fn to be called after every state change. fn runs
// on the goroutine that caused the change and must not block.
func WithObserver(fn func(Snapshot)) Option {
	return func(p *Panel) { p.observe = fn }
}

// Panel drives a Machine for one product: it runs streams, saves drafts and
// reports outcomes through the Notifier.
type Panel struct {
	streamer     Streamer
	updater      product.Updater
	notify       Notifier
	systemPrompt string
	observe      func(Snapshot)

	m Machine

	mu      sync.Mutex
	product product.Product
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(p product.Product, s Streamer, u product.Updater, n Notifier, opts ...Option) *Panel {
	pn := &Panel{
		product:      p,
		streamer:     s,
		updater:      u,
		notify:       n,
		systemPrompt: prompt.SystemPrompt,
	}
	for _, opt := range opts {
		opt(pn)
	}
	return pn
}

// Visible is false when the product has no description to rewrite.
func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.TrimSpace(p.product.Description) != ""
}

// Product returns the product as last saved through the panel.
func (p *Panel) Product() product.Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.product
}

// Select starts a completion for t, cancelling whatever stream was running.
// Chunks arrive asynchronously; use the observer or Snapshot to follow them.
func (p *Panel) Select(ctx context.Context, t prompt.Type) error {
	p.mu.Lock()
	gen, err := p.m.Start(t)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	sctx, cancel := context.WithCancel(ctx)
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	req := completion.Request{
		Type:        string(t),
		Description: p.product.Description,
		Keyword:     p.product.Title,
		Messages:    []completion.Message{{Role: completion.RoleSystem, Content: p.systemPrompt}},
	}
	p.mu.Unlock()
	p.changed()

	p.wg.Add(1)
	go p.run(sctx, cancel, gen, req)
	return nil
}

func (p *Panel) run(ctx context.Context, cancel context.CancelFunc, gen uint64, req completion.Request) {
	defer p.wg.Done()
	defer cancel()

	s, err := p.streamer.Stream(ctx, req)
	if err != nil {
		p.finish(ctx, gen, err)
		return
	}
	defer s.Close()

	for s.Next() {
		if !p.m.Append(gen, s.Chunk()) {
			return
		}
		p.changed()
	}
	p.finish(ctx, gen, s.Err())
}

// finish settles stream gen. A stream stopped by Close ends quietly.
func (p *Panel) finish(ctx context.Context, gen uint64, err error) {
	if !p.m.Finish(gen, err) {
		return
	}
	p.changed()
	if err != nil && ctx.Err() != nil {
		return
	}
	if snap := p.m.Snapshot(); snap.Err != nil {
		p.notify.Error(errorTitle, snap.Err.Error())
	}
}

// Edit replaces the reviewed draft.
func (p *Panel) Edit(text string) error {
	if err := p.m.Edit(text); err != nil {
		return err
	}
	p.changed()
	return nil
}

// Cancel discards the reviewed draft.
func (p *Panel) Cancel() error {
	if err := p.m.Cancel(); err != nil {
		return err
	}
	p.changed()
	return nil
}

// Save writes the draft, edited or not, to the product. On failure the
// draft stays in review so the user can retry.
func (p *Panel) Save(ctx context.Context) error {
	gen, text, err := p.m.BeginSave()
	if err != nil {
		return err
	}
	p.changed()

	p.mu.Lock()
	id := p.product.ID
	p.mu.Unlock()

	if err := p.updater.Update(ctx, id, product.Update{Description: text}); err != nil {
		if p.m.EndSave(gen, err) {
			p.changed()
		}
		p.notify.Error(errorTitle, err.Error())
		return err
	}

	p.mu.Lock()
	p.product.Description = text
	p.mu.Unlock()
	if p.m.EndSave(gen, nil) {
		p.changed()
	}
	p.notify.Success(successTitle, successMessage)
	return nil
}

// Enabled reports whether the button for t accepts clicks.
func (p *Panel) Enabled(t prompt.Type) bool { return p.m.Enabled(t) }

func (p *Panel) Snapshot() Snapshot { return p.m.Snapshot() }

// Wait blocks until every stream goroutine has returned.
func (p *Panel) Wait() { p.wg.Wait() }

// Close cancels the running stream and waits for it to stop.
func (p *Panel) Close() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Panel) changed() {
	if p.observe != nil {
		p.observe(p.m.Snapshot())
	}
}
