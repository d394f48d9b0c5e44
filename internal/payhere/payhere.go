package payhere

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ゲートウェイのハッシュ仕様:
// hash = MD5UP(merchant_id + order_id + amount + currency + MD5UP(secret))
// amountは小数2桁固定の文字列。

// ゲートウェイ側の設定
type Config struct {
	MerchantID string
	Secret     string
	Currency   string
	NotifyURL  string
	ReturnURL  string
	CancelURL  string
	Sandbox    bool
}

// リダイレクトに渡す支払いペイロード。
// ここで金銭は動かない。署名付きの受け渡しデータを組み立てるだけ。
type Payload struct {
	Sandbox    bool   `json:"sandbox"`
	MerchantID string `json:"merchant_id"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
	NotifyURL  string `json:"notify_url"`
	OrderID    string `json:"order_id"`
	Items      string `json:"items"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Hash       string `json:"hash"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// 購入者・配送先の情報
type Buyer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	Country   string
}

// OrderRef は注文IDを対外向けの形式にする。
func OrderRef(orderID int64) string {
	return fmt.Sprintf("#000%d", orderID)
}

// FormatAmount は金額を小数2桁固定の文字列にする。
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Signature は改ざん検知用の署名を計算する。
// 同じ入力なら必ず同じ値。どれか1つでも変わると値が変わる。
func Signature(merchantID string, orderID string, formattedAmount string, currency string, secret string) string {
	secretDigest := md5Upper(secret)
	return md5Upper(merchantID + orderID + formattedAmount + currency + secretDigest)
}

// Build はチェックアウト結果から支払いペイロードを組み立てる。
// I/Oも副作用も無い。入力が同じなら出力も同じ。
func Build(cfg Config, orderID int64, amount decimal.Decimal, items string, buyer Buyer) Payload {
	orderRef := OrderRef(orderID)
	formatted := FormatAmount(amount)

	return Payload{
		Sandbox:    cfg.Sandbox,
		MerchantID: cfg.MerchantID,
		ReturnURL:  cfg.ReturnURL,
		CancelURL:  cfg.CancelURL,
		NotifyURL:  cfg.NotifyURL,
		OrderID:    orderRef,
		Items:      items,
		Amount:     formatted,
		Currency:   cfg.Currency,
		Hash:       Signature(cfg.MerchantID, orderRef, formatted, cfg.Currency, cfg.Secret),
		FirstName:  buyer.FirstName,
		LastName:   buyer.LastName,
		Email:      buyer.Email,
		Phone:      buyer.Phone,
		Address:    buyer.Address,
		City:       buyer.City,
		Country:    buyer.Country,
	}
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
