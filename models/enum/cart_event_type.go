package enum

// CartEventType 表示購物車變動事件的類型
type CartEventType string

const (
	CartEventTypeUpdated CartEventType = "updated"
	CartEventTypeCleared CartEventType = "cleared"
	CartEventTypeMerged  CartEventType = "merged"
	CartEventTypeDeleted CartEventType = "deleted"
)
