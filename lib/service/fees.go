package service

import (
	"time"

	"github.com/factorhub/factorhub.go/common"
	"github.com/factorhub/factorhub.go/db/models"
)

// PlatformFee returns the platform's share of a sale, rounded down.
func PlatformFee(salePrice, feeRateBps int64) int64 {
	return salePrice * feeRateBps / common.BasisPointDivisor
}

// LatePenalty returns the penalty owed on top of the face value, rounded down.
func LatePenalty(faceValue, penaltyRateBps int64) int64 {
	return faceValue * penaltyRateBps / common.BasisPointDivisor
}

// FeeBreakdown splits a sale price into the SME proceeds and the platform fee.
// The two always sum to the sale price exactly.
func (svc *FactorhubService) FeeBreakdown(salePrice int64) (smeAmount, platformFee int64) {
	platformFee = PlatformFee(salePrice, svc.Config.FeeRateBps)
	smeAmount = salePrice - platformFee
	return smeAmount, platformFee
}

// SettlementAmount returns the exact payment required to settle the invoice
// at the given time, and the penalty portion of it. The penalty applies as
// soon as the due date has passed.
func (svc *FactorhubService) SettlementAmount(invoice *models.Invoice, at time.Time) (required, penalty int64) {
	if at.After(invoice.DueDate) {
		penalty = LatePenalty(invoice.FaceValue, svc.Config.PenaltyRateBps)
	}
	return invoice.FaceValue + penalty, penalty
}
