package usecase

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"app/internal/domain/checkout"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// カートの持ち主。ログインユーザーか匿名セッションのどちらか。
// UserIDが正ならログイン済みで、SessionTokenは無視する。
type Customer struct {
	UserID       int64
	SessionToken string
}

func (c Customer) IsGuest() bool {
	return c.UserID <= 0
}

// CartUsecase は /cart の業務ロジックです。
// 在庫充足の判定とバリアント自動選択は checkout.StockResolver に任せる。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	variantRepo  repo.VariantRepository
	resolver     *checkout.StockResolver
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	variantRepo repo.VariantRepository,
	resolver *checkout.StockResolver,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		resolver:     resolver,
	}
}

// price は unit_price_snapshot（追加時点の価格）を返します。
type CartItemResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	VariantID    *int64          `json:"variant_id"`
	Name         string          `json:"name"`
	VariantName  string          `json:"variant_name,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	LineTotal    decimal.Decimal `json:"line_total"`
	AutoSelected bool            `json:"variant_auto_selected"`
}

type CartResponse struct {
	Items      []CartItemResponse `json:"items"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	CouponCode *string            `json:"coupon_code"`
}

type AddCartInput struct {
	ProductID int64
	VariantID *int64
	Quantity  int64
}

// 追加の結果。自動選択が起きたときだけNoticeが入る。
type AddCartOutput struct {
	Cart   CartResponse `json:"cart"`
	Notice string       `json:"notice,omitempty"`
}

type UpdateCartItemInput struct {
	Quantity int64
}

// 持ち主のACTIVEカートを取得（無ければ作成）。
func (u *CartUsecase) getOrCreateCart(ctx context.Context, customer Customer) (model.Cart, error) {
	if !customer.IsGuest() {
		return u.cartRepo.GetOrCreateActiveByUserID(ctx, customer.UserID)
	}
	if customer.SessionToken == "" {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "missing cart session")
	}
	return u.cartRepo.GetOrCreateActiveBySession(ctx, customer.SessionToken)
}

// 持ち主のACTIVEカートを探す（作成はしない）。
func (u *CartUsecase) findCart(ctx context.Context, customer Customer) (model.Cart, error) {
	if !customer.IsGuest() {
		return u.cartRepo.FindActiveByUserID(ctx, customer.UserID)
	}
	if customer.SessionToken == "" {
		return model.Cart{}, repo.ErrNotFound
	}
	return u.cartRepo.FindActiveBySession(ctx, customer.SessionToken)
}

// GetCart はカート取得（無ければACTIVEを作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, customer Customer) (CartResponse, error) {
	cart, err := u.getOrCreateCart(ctx, customer)
	if err != nil {
		if he, ok := AsHTTPError(err); ok {
			return CartResponse{}, he
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart)
}

// AddToCart はカートに追加。
// 同一の (商品, バリアント) は数量加算。本体在庫が足りないときは
// 在庫のあるバリアントへの自動選択を試み、それも無ければ拒否する。
func (u *CartUsecase) AddToCart(ctx context.Context, customer Customer, in AddCartInput) (AddCartOutput, error) {
	if in.ProductID <= 0 {
		return AddCartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.VariantID != nil && *in.VariantID <= 0 {
		return AddCartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid variant_id")
	}
	if in.Quantity < 1 {
		return AddCartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := u.getOrCreateCart(ctx, customer)
	if err != nil {
		if he, ok := AsHTTPError(err); ok {
			return AddCartOutput{}, he
		}
		return AddCartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return AddCartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return AddCartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return AddCartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	variants, err := u.variantRepo.ListByProductID(ctx, in.ProductID)
	if err != nil {
		return AddCartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//明示指定されたバリアントはこの商品のアクティブなものに限る
	var requested *checkout.VariantFacts
	if in.VariantID != nil {
		var found *model.ProductVariant
		for i := range variants {
			if variants[i].ID == *in.VariantID {
				found = &variants[i]
				break
			}
		}
		if found == nil || !found.IsActive {
			return AddCartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid variant")
		}
		vf := checkout.VariantFactsOf(*found)
		requested = &vf
	}

	//既存行の数量を調べ、判定は「増分ではなく新しい合計」で行う
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return AddCartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	var existingQty int64 = 0
	for _, it := range items {
		if it.ProductID != in.ProductID {
			continue
		}
		if sameVariant(it.VariantID, in.VariantID) {
			existingQty = it.Quantity
			break
		}
		//指定なしの再追加は、以前の追加で自動選択されたバリアント行に積まれる。
		//判定もその行のバリアント在庫に対して行う。
		if in.VariantID == nil && it.VariantAutoSelected && it.VariantID != nil {
			existingQty = it.Quantity
			for i := range variants {
				if variants[i].ID == *it.VariantID {
					vf := checkout.VariantFactsOf(variants[i])
					requested = &vf
					break
				}
			}
			break
		}
	}
	newTotal := existingQty + in.Quantity

	vfs := make([]checkout.VariantFacts, 0, len(variants))
	for _, v := range variants {
		vfs = append(vfs, checkout.VariantFactsOf(v))
	}

	res, err := u.resolver.Resolve(checkout.ProductFactsOf(p), vfs, requested, newTotal)
	if err != nil {
		var se *checkout.StockInsufficientError
		if errors.As(err, &se) {
			return AddCartOutput{}, NewHTTPError(http.StatusBadRequest, se.Error())
		}
		return AddCartOutput{}, NewHTTPError(http.StatusInternalServerError, "stock check failed")
	}

	//行の単価は追加時点でスナップショットする
	unitPrice := p.Price
	var lineVariantID *int64
	if res.Variant != nil {
		unitPrice = res.Variant.EffectivePrice(p.Price)
		id := res.Variant.ID
		lineVariantID = &id
	}

	if err := u.cartItemRepo.UpsertLine(ctx, repo.UpsertLineInput{
		CartID:              cart.ID,
		ProductID:           in.ProductID,
		VariantID:           lineVariantID,
		AddQuantity:         in.Quantity,
		UnitPriceSnapshot:   unitPrice,
		VariantAutoSelected: res.AutoSelected,
	}); err != nil {
		return AddCartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cr, err := u.buildCartResponse(ctx, cart)
	if err != nil {
		return AddCartOutput{}, err
	}
	return AddCartOutput{Cart: cr, Notice: res.Notice}, nil
}

// 数量変更（所有チェック＋在庫チェック）。
// 追加時と違い、ここでは別バリアントへの自動選択はしない。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, customer Customer, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, item, err := u.ownedItem(ctx, customer, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}

	p, err := u.productRepo.FindByID(ctx, item.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	//バリアント行はその在庫、本体行は本体在庫を判定する。
	//代替候補を渡さないので自動選択は起きない。
	var fixed *checkout.VariantFacts
	if item.VariantID != nil {
		v, err := u.variantRepo.FindByID(ctx, *item.VariantID)
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid variant")
		}
		if err != nil {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		vf := checkout.VariantFactsOf(v)
		fixed = &vf
	}
	if _, err := u.resolver.Resolve(checkout.ProductFactsOf(p), nil, fixed, in.Quantity); err != nil {
		var se *checkout.StockInsufficientError
		if errors.As(err, &se) {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, se.Error())
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "stock check failed")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart)
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, customer Customer, cartItemID int64) (CartResponse, error) {
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	cart, _, err := u.ownedItem(ctx, customer, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart)
}

// 明細がこの持ち主のACTIVEカートに属するか。他人の明細は「存在しない扱い」。
func (u *CartUsecase) ownedItem(ctx context.Context, customer Customer, cartItemID int64) (model.Cart, model.CartItem, error) {
	cart, err := u.findCart(ctx, customer)
	if err == repo.ErrNotFound {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	owned, err := u.cartItemRepo.IsOwnedByCart(ctx, cartItemID, cart.ID)
	if err != nil {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cart, item, nil
}

// カートの明細をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cart model.Cart) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	subtotal := decimal.Zero

	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			continue
		}
		if !p.IsActive {
			continue
		}

		variantName := ""
		if it.VariantID != nil {
			if v, err := u.variantRepo.FindByID(ctx, *it.VariantID); err == nil {
				variantName = v.Name
			}
		}

		respItems = append(respItems, CartItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			Name:         p.Name,
			VariantName:  variantName,
			Price:        it.UnitPriceSnapshot,
			Quantity:     it.Quantity,
			LineTotal:    it.TotalPrice(),
			AutoSelected: it.VariantAutoSelected,
		})

		subtotal = subtotal.Add(it.TotalPrice())
	}

	return CartResponse{
		Items:      respItems,
		Subtotal:   subtotal,
		CouponCode: cart.CouponCode,
	}, nil
}

func sameVariant(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
