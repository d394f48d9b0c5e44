package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/payhere"
	repo "app/internal/repository"
	"app/internal/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 通知メールはキューに積むだけ（配送保証はしない）
type MailEnqueuer interface {
	Enqueue(ctx context.Context, to string, subject string, body string) error
}

// CheckoutUsecase は会員カートを確定済みの注文へ変換する。
//
// 住所解決 → 明細作成 → 在庫予約 → カートクリア を
// ひとつのトランザクションで行い、どこかで失敗したら全部を巻き戻す。
// 半端な注文は決して外から見えない。
type CheckoutUsecase struct {
	tx      repo.TransactionManager
	users   repo.UserRepository
	cities  repo.CityRepository
	mail    MailEnqueuer
	payCfg  payhere.Config
	hubCity string
	logger  *zap.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	cities repo.CityRepository,
	mail MailEnqueuer,
	payCfg payhere.Config,
	hubCity string,
	logger *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:      tx,
		users:   users,
		cities:  cities,
		mail:    mail,
		payCfg:  payCfg,
		hubCity: hubCity,
		logger:  logger,
	}
}

// ListCities はチェックアウトフォーム用の都市一覧。
func (u *CheckoutUsecase) ListCities(ctx context.Context) ([]model.City, error) {
	cities, err := u.cities.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cities, nil
}

// チェックアウトのリクエスト
type CheckoutInput struct {
	UseCurrentAddress bool
	FirstName         string
	LastName          string
	CityID            int64
	LineOne           string
	LineTwo           string
	PostalCode        string
	Mobile            string
	OrderNotes        string
}

type CheckoutOutput struct {
	Status  bool             `json:"status"`
	Message string           `json:"message"`
	OrderID int64            `json:"order_id,omitempty"`
	PayHere *payhere.Payload `json:"payhereJson,omitempty"`
}

const countryName = "Sri Lanka"

// Checkout はチェックアウト1回分を実行する。
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	//セッション切れは書き込み前に検知して、検証エラーとは別に返す
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "Session expired! Please log in again")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrUserNotFound {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "Session expired! Please log in again")
	}
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var (
		orderID   int64
		total     decimal.Decimal
		itemsDesc string
		address   model.Address
		cityName  string
	)

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//住所解決。失敗はすべて注文・在庫に触る前。
		addr, city, err := u.resolveAddress(ctx, r, userID, in)
		if err != nil {
			return err
		}

		//カート明細取得
		cartItems, err := r.CartItems().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "Your cart is empty")
		}

		//配送料金はハブ都市かどうかで決まる
		code := model.DeliveryOutsideHub
		if strings.EqualFold(city.Name, u.hubCity) {
			code = model.DeliveryWithinHub
		}
		dt, err := r.DeliveryTypes().FindByCode(ctx, code)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//明細作成＋在庫予約。どれか1行でも失敗したら全部巻き戻る。
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		sum := decimal.Zero
		var desc strings.Builder
		now := time.Now()

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound || (err == nil && !p.IsActive) {
				return NewHTTPError(http.StatusBadRequest, "A product in your cart is no longer available")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//予約＝チェックと減算を1つの原子的な更新で
			ok, err := r.Inventory().Reserve(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "Insufficient stock for "+p.Title)
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:            p.ID,
				ProductTitleSnapshot: p.Title,
				UnitPriceSnapshot:    p.Price,
				Quantity:             ci.Quantity,
				DeliveryTypeID:       dt.ID,
				Status:               model.OrderItemStatusProcessing,
				Rating:               0,
				CreatedAt:            now,
			})

			//合計は (単価 + 1個あたり配送料) * 数量
			qty := decimal.NewFromInt(ci.Quantity)
			sum = sum.Add(p.Price.Add(dt.Price).Mul(qty))

			fmt.Fprintf(&desc, "%s x %d, ", p.Title, ci.Quantity)
		}

		//注文作成
		id, err := r.Orders().Create(ctx, model.Order{
			UserID:     userID,
			AddressID:  addr.ID,
			TotalPrice: sum,
			CreatedAt:  now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, id, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//確定した分のカートをクリア
		if err := r.CartItems().ClearByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		orderID = id
		total = sum
		itemsDesc = strings.TrimSuffix(desc.String(), ", ")
		address = addr
		cityName = city.Name
		return nil
	})

	if err != nil {
		return CheckoutOutput{}, err
	}

	//支払いペイロードは確定値からの純粋な計算
	payload := payhere.Build(u.payCfg, orderID, total, itemsDesc, payhere.Buyer{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     address.Mobile,
		Address:   address.LineOne + ", " + address.LineTwo,
		City:      cityName,
		Country:   countryName,
	})

	//確認メールはキューに積むだけ。失敗してもチェックアウトは成功のまま。
	subject := "Order Confirmation " + payload.OrderID
	body := fmt.Sprintf("<p>Thank you for your order %s.</p><p>Items: %s</p><p>Total: %s %s</p>",
		payload.OrderID, itemsDesc, payload.Currency, payload.Amount)
	if err := u.mail.Enqueue(ctx, user.Email, subject, body); err != nil {
		u.logger.Warn("checkout: failed to enqueue confirmation mail",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
	}

	return CheckoutOutput{
		Status:  true,
		Message: "Checkout completed",
		OrderID: orderID,
		PayHere: &payload,
	}, nil
}

// 住所の再利用または新規作成。
func (u *CheckoutUsecase) resolveAddress(ctx context.Context, r repo.TxRepos, userID int64, in CheckoutInput) (model.Address, model.City, error) {
	if in.UseCurrentAddress {
		addr, err := r.Addresses().FindLatestByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return model.Address{}, model.City{}, NewHTTPError(http.StatusBadRequest,
				"Your current address was not found. Please add a new address")
		}
		if err != nil {
			return model.Address{}, model.City{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文メモだけは今回の入力で差し替えられる
		if strings.TrimSpace(in.OrderNotes) != "" {
			if err := r.Addresses().UpdateOrderNotes(ctx, addr.ID, in.OrderNotes); err != nil {
				return model.Address{}, model.City{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			addr.OrderNotes = in.OrderNotes
		}

		city, err := r.Cities().FindByID(ctx, addr.CityID)
		if err != nil {
			return model.Address{}, model.City{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return addr, city, nil
	}

	msg, ok := validator.ValidateCheckoutAddress(validator.CheckoutAddressInput{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		CityID:     in.CityID,
		LineOne:    in.LineOne,
		LineTwo:    in.LineTwo,
		PostalCode: in.PostalCode,
		Mobile:     in.Mobile,
	})
	if !ok {
		return model.Address{}, model.City{}, NewHTTPError(http.StatusBadRequest, msg)
	}

	city, err := r.Cities().FindByID(ctx, in.CityID)
	if err == repo.ErrNotFound {
		return model.Address{}, model.City{}, NewHTTPError(http.StatusBadRequest, "Invalid city name")
	}
	if err != nil {
		return model.Address{}, model.City{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	addr, err := r.Addresses().Create(ctx, model.Address{
		UserID:     userID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		CityID:     city.ID,
		LineOne:    in.LineOne,
		LineTwo:    in.LineTwo,
		PostalCode: in.PostalCode,
		Mobile:     in.Mobile,
		OrderNotes: in.OrderNotes,
	})
	if err != nil {
		return model.Address{}, model.City{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return addr, city, nil
}
