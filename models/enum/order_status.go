package enum

// OrderStatus 表示訂單的狀態
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // 訂單已創建，等待處理
	OrderStatusProcessing OrderStatus = "processing" // 訂單處理中
	OrderStatusShipped    OrderStatus = "shipped"    // 已出貨
	OrderStatusCompleted  OrderStatus = "completed"  // 訂單完成，已交付
	OrderStatusCancelled  OrderStatus = "cancelled"  // 訂單取消
	OrderStatusRefunded   OrderStatus = "refunded"   // 訂單退款完成
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	default:
		return false
	}
}
