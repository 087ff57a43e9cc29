package service

import (
	"bytes"
	"testing"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/pkg/barcode"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGenerateUniqueBarcode_SkipsTakenCodes(t *testing.T) {
	f := newFixture(t)
	now := func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }

	taken := barcode.Generate(now(), func(int) int { return 42 })
	p := f.product(t, "Cola", "1.00", "1", model.UnitPiece)
	require.NoError(t, f.db.Model(p).Update("barcode", taken).Error)

	draws := []int{42, 42, 7}
	svc := &barcodeService{
		productRepo: f.repos.Products,
		log:         zap.NewNop(),
		now:         now,
		intN: func(int) int {
			n := draws[0]
			draws = draws[1:]
			return n
		},
	}

	code, err := svc.GenerateUniqueBarcode(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "261016000007", code[:12])
	assert.True(t, barcode.IsValidEAN13(code))
}

func TestGenerateUniqueBarcode_Exhausted(t *testing.T) {
	f := newFixture(t)
	now := func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }
	constant := func(int) int { return 1 }

	p := f.product(t, "Cola", "1.00", "1", model.UnitPiece)
	require.NoError(t, f.db.Model(p).Update("barcode", barcode.Generate(now(), constant)).Error)

	svc := &barcodeService{productRepo: f.repos.Products, log: zap.NewNop(), now: now, intN: constant}
	_, err := svc.GenerateUniqueBarcode(f.ctx)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.ErrorIs(t, err, barcode.ErrExhausted)
}

func TestBarcodeValidateFormat(t *testing.T) {
	svc := NewBarcodeService(newFixture(t).repos, zap.NewNop())
	assert.True(t, svc.ValidateFormat("4006381333931"))
	assert.False(t, svc.ValidateFormat("4006381333932"))
	assert.True(t, svc.ValidateFormat("SKU-001"))
	assert.False(t, svc.ValidateFormat(""))
}

func TestRenderLabel(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cola", "1.00", "1", model.UnitPiece)

	png, err := f.barcodes().RenderLabel(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = f.barcodes().RenderLabel(f.ctx, uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
}
