package orders

import "copyTradeAnalyzer/internal/domain"

// SignedQuantity applies the position-delta convention: opening a short or closing a long is
// negative, everything else positive.
func SignedQuantity(quantity float64, tradeType domain.TradeType) float64 {
	return quantity * tradeType.Direction()
}

// OpenType returns the trade type of the opening leg for a leverage label.
func OpenType(leverageLabel string) domain.TradeType {
	if domain.IsLongLabel(leverageLabel) {
		return domain.OpenLong
	}
	return domain.OpenShort
}

// CloseType returns the trade type of the closing leg for a leverage label.
func CloseType(leverageLabel string) domain.TradeType {
	if domain.IsLongLabel(leverageLabel) {
		return domain.CloseLong
	}
	return domain.CloseShort
}
