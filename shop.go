package storefront

import (
	"context"
	"errors"

	"golang.org/x/text/language"
	"go.uber.org/zap"

	"goflare.io/storefront/account"
	"goflare.io/storefront/cart"
	"goflare.io/storefront/catalog"
	"goflare.io/storefront/category"
	"goflare.io/storefront/event"
	"goflare.io/storefront/i18n"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
	"goflare.io/storefront/order"
	"goflare.io/storefront/variant"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrUnauthenticated    = errors.New("sign-in required")
	ErrVariantUnavailable = errors.New("variant unavailable")
)

// Service is everything the HTTP layer needs. Calls that reach the backend on
// behalf of a shopper expect the access token in ctx (see api.WithToken).
type Service interface {
	EventProcessor

	GetCart(ctx context.Context, owner string) (*models.Cart, error)
	AddToCart(ctx context.Context, owner string, item models.CartItem) (*models.Cart, error)
	RemoveFromCart(ctx context.Context, owner string, variantID int64) (*models.Cart, error)
	UpdateCartQuantity(ctx context.Context, owner string, variantID int64, quantity int) (*models.Cart, error)
	ClearCart(ctx context.Context, owner string) (*models.Cart, error)
	SetCheckoutOptions(ctx context.Context, owner string, addressID, promotionID *int64) (*models.Cart, error)
	GetOrderPayload(ctx context.Context, owner string) (models.OrderPayload, error)
	ViewCart(ctx context.Context, owner string, tag language.Tag) (*CartView, error)
	Checkout(ctx context.Context, owner string) (*models.Order, error)

	ListProducts(ctx context.Context, query models.ProductQuery) (*models.Page[models.Product], error)
	ProductDetail(ctx context.Context, productID int64, sel variant.Selection, tag language.Tag) (*variant.View, error)
	ChangeColor(ctx context.Context, productID int64, current variant.Selection, newColor string, tag language.Tag) (*variant.View, error)
	CategoryTree(ctx context.Context) ([]*models.CategoryTree, error)

	Login(ctx context.Context, guestOwner string, input *models.LoginInput) (*models.Session, error)
	Register(ctx context.Context, guestOwner string, input *models.RegisterInput) (*models.Session, error)
	Logout(ctx context.Context, userID string) error
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, input *models.ProfileInput) (*models.User, error)
	ListAddresses(ctx context.Context) ([]*models.Address, error)
	CreateAddress(ctx context.Context, input *models.AddressInput) (*models.Address, error)
	DeleteAddress(ctx context.Context, addressID int64) error
	ListMyOrders(ctx context.Context, page, limit int) (*models.Page[models.Order], error)
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID int64) (*models.Order, error)

	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
	CreateProduct(ctx context.Context, input *models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID int64, input *models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID int64) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, input *models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, categoryID int64, input *models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, categoryID int64) error
	ListOrders(ctx context.Context, status enum.OrderStatus, page, limit int) (*models.Page[models.Order], error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status enum.OrderStatus) (*models.Order, error)
}

type service struct {
	carts    *cart.Manager
	catalog  catalog.Repository
	category category.Repository
	order    order.Repository
	account  account.Repository
	event    event.Repository
	bundle   *i18n.Bundle

	hydrateLimit int
	logger       *zap.Logger
}

func NewService(
	carts *cart.Manager, catalog catalog.Repository, category category.Repository, order order.Repository,
	account account.Repository, event event.Repository, bundle *i18n.Bundle,
	logger *zap.Logger) Service {
	return &service{
		carts:        carts,
		catalog:      catalog,
		category:     category,
		order:        order,
		account:      account,
		event:        event,
		bundle:       bundle,
		hydrateLimit: defaultHydrateLimit,
		logger:       logger,
	}
}

func (s *service) Login(ctx context.Context, guestOwner string, input *models.LoginInput) (*models.Session, error) {
	session, err := s.account.Login(ctx, input)
	if err != nil {
		return nil, err
	}
	if err = s.adoptGuestCart(ctx, guestOwner, session.User.ID); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) Register(ctx context.Context, guestOwner string, input *models.RegisterInput) (*models.Session, error) {
	session, err := s.account.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	if err = s.adoptGuestCart(ctx, guestOwner, session.User.ID); err != nil {
		return nil, err
	}
	return session, nil
}

// adoptGuestCart merges the session's guest cart, if any, into the account cart.
func (s *service) adoptGuestCart(ctx context.Context, guestOwner, userID string) error {
	if _, err := s.carts.Login(ctx, guestOwner, userID); err != nil {
		s.logger.Error("Failed to merge guest cart",
			zap.String("guest", guestOwner),
			zap.String("user_id", userID),
			zap.Error(err))
		return err
	}
	return nil
}

// Logout signs out at the backend when it can; the local cart policy is
// applied either way.
func (s *service) Logout(ctx context.Context, userID string) error {
	if err := s.account.Logout(ctx); err != nil {
		s.logger.Warn("Backend logout failed", zap.String("user_id", userID), zap.Error(err))
	}
	if userID == "" {
		return nil
	}
	return s.carts.Logout(ctx, userID)
}

func (s *service) Me(ctx context.Context) (*models.User, error) {
	return s.account.Me(ctx)
}

func (s *service) UpdateProfile(ctx context.Context, input *models.ProfileInput) (*models.User, error) {
	return s.account.UpdateProfile(ctx, input)
}

func (s *service) ListAddresses(ctx context.Context) ([]*models.Address, error) {
	return s.account.ListAddresses(ctx)
}

func (s *service) CreateAddress(ctx context.Context, input *models.AddressInput) (*models.Address, error) {
	return s.account.CreateAddress(ctx, input)
}

func (s *service) DeleteAddress(ctx context.Context, addressID int64) error {
	return s.account.DeleteAddress(ctx, addressID)
}

func (s *service) ListMyOrders(ctx context.Context, page, limit int) (*models.Page[models.Order], error) {
	return s.order.ListMine(ctx, page, limit)
}

func (s *service) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.order.Get(ctx, orderID)
}

func (s *service) CancelOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.order.Cancel(ctx, orderID)
}

func (s *service) ListProducts(ctx context.Context, query models.ProductQuery) (*models.Page[models.Product], error) {
	return s.catalog.ListProducts(ctx, query)
}

func (s *service) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	return s.catalog.GetProduct(ctx, productID)
}

func (s *service) CreateProduct(ctx context.Context, input *models.ProductInput) (*models.Product, error) {
	return s.catalog.CreateProduct(ctx, input)
}

func (s *service) UpdateProduct(ctx context.Context, productID int64, input *models.ProductInput) (*models.Product, error) {
	return s.catalog.UpdateProduct(ctx, productID, input)
}

func (s *service) DeleteProduct(ctx context.Context, productID int64) error {
	return s.catalog.DeleteProduct(ctx, productID)
}

func (s *service) CategoryTree(ctx context.Context) ([]*models.CategoryTree, error) {
	categories, err := s.category.List(ctx)
	if err != nil {
		return nil, err
	}
	return category.BuildTree(categories), nil
}

func (s *service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.category.List(ctx)
}

func (s *service) CreateCategory(ctx context.Context, input *models.CategoryInput) (*models.Category, error) {
	return s.category.Create(ctx, input)
}

func (s *service) UpdateCategory(ctx context.Context, categoryID int64, input *models.CategoryInput) (*models.Category, error) {
	return s.category.Update(ctx, categoryID, input)
}

func (s *service) DeleteCategory(ctx context.Context, categoryID int64) error {
	return s.category.Delete(ctx, categoryID)
}

func (s *service) ListOrders(ctx context.Context, status enum.OrderStatus, page, limit int) (*models.Page[models.Order], error) {
	return s.order.ListAll(ctx, status, page, limit)
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID int64, status enum.OrderStatus) (*models.Order, error) {
	return s.order.UpdateStatus(ctx, orderID, status)
}
