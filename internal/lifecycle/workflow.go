package lifecycle

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/prohmpiriya/ecom-storefront/internal/catalog"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
	"github.com/prohmpiriya/ecom-storefront/pkg/telemetry"
)

// Session yields the identity acting right now
type Session interface {
	Current() *domain.Identity
}

// ProductView is a product plus what the current user may do with it
type ProductView struct {
	domain.Product
	CanEdit   bool `json:"canEdit"`
	CanDecide bool `json:"canDecide"`
}

// Workflow runs product actions on behalf of a live session. Permissions are
// re-read from the session on every call, never cached.
type Workflow struct {
	products   *catalog.ProductService
	categories *catalog.CategoryService
	session    Session
}

// NewWorkflow binds the catalog services to session
func NewWorkflow(products *catalog.ProductService, categories *catalog.CategoryService, session Session) *Workflow {
	return &Workflow{products: products, categories: categories, session: session}
}

// Catalog lists the products the current role may see
func (w *Workflow) Catalog(ctx context.Context) ([]domain.Product, error) {
	var role domain.Role
	if id := w.session.Current(); id != nil {
		role = id.Role
	}
	return w.products.ListForRole(ctx, role)
}

// View fetches a product with the caller's edit and decision flags
func (w *Workflow) View(ctx context.Context, id int64) (*ProductView, error) {
	p, err := w.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actor := w.session.Current()
	return &ProductView{Product: *p, CanEdit: CanModify(actor, p), CanDecide: CanDecide(actor)}, nil
}

// Submit validates locally, checks the category is active and creates the product
func (w *Workflow) Submit(ctx context.Context, req dto.CreateProductRequest) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "lifecycle.submit")
	defer span.End()

	if !CanCreate(w.session.Current()) {
		return nil, domain.ErrForbidden
	}
	if err := Validate(req); err != nil {
		return nil, err
	}

	category, err := w.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load category: %w", err)
	}
	if err := ValidateCreate(req, category); err != nil {
		return nil, err
	}

	p, err := w.products.Create(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("product.id", p.ID))
	return p, nil
}

// Edit updates a product the caller owns (or any product, for an Admin)
func (w *Workflow) Edit(ctx context.Context, id int64, req dto.UpdateProductRequest) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "lifecycle.edit")
	defer span.End()

	if err := Validate(dto.CreateProductRequest(req)); err != nil {
		return nil, err
	}
	if err := w.authorizeModify(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return w.products.Update(ctx, id, req)
}

// Remove soft-deletes a product the caller owns (or any product, for an Admin)
func (w *Workflow) Remove(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "lifecycle.remove")
	defer span.End()

	if err := w.authorizeModify(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return w.products.SoftDelete(ctx, id)
}

// Decide approves (true) or rejects (false) a product. Admin only.
func (w *Workflow) Decide(ctx context.Context, id int64, approved bool) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "lifecycle.decide")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id), attribute.Bool("product.approved", approved))

	if !CanDecide(w.session.Current()) {
		return nil, domain.ErrApprovalRequired
	}
	p, err := w.products.Approve(ctx, id, approved)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return p, nil
}

func (w *Workflow) authorizeModify(ctx context.Context, id int64) error {
	actor := w.session.Current()
	if actor == nil {
		return domain.ErrNotAuthenticated
	}
	p, err := w.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	// identity may have changed while the product was being fetched
	if !CanModify(w.session.Current(), p) {
		return domain.ErrNotProductOwner
	}
	return nil
}
