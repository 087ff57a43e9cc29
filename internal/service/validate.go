package service

import (
	"go-pos-ws/internal/model"
	"go-pos-ws/pkg/validator"

	"github.com/shopspring/decimal"
)

// quantityScale matches the decimal(18,3) quantity columns.
const quantityScale = 3

func validateRequest(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		msgs := validator.Messages(errs)
		return &AppError{Kind: KindValidation, Message: msgs[0], Messages: msgs}
	}
	return nil
}

// checkQuantity rejects quantities the product's unit cannot hold.
func checkQuantity(qty decimal.Decimal, unit model.UnitType, productName string) error {
	if !qty.IsPositive() {
		return Validation("quantity for '%s' must be greater than zero", productName)
	}
	if !qty.Equal(qty.Round(quantityScale)) {
		return Validation("quantity for '%s' has more than %d decimal places", productName, quantityScale)
	}
	if unit.Discrete() && !qty.IsInteger() {
		return Validation("quantity for '%s' must be a whole number", productName)
	}
	return nil
}

// minSellable is the smallest quantity whose subtotal at price rounds to at least one cent.
func minSellable(price decimal.Decimal) decimal.Decimal {
	step := decimal.New(1, -quantityScale)
	qty := decimal.New(5, -3).Div(price).RoundCeil(quantityScale)
	if qty.LessThan(step) {
		qty = step
	}
	for !qty.Mul(price).Round(2).IsPositive() {
		qty = qty.Add(step)
	}
	return qty
}
