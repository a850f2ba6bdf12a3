package constants

// 交易类型常量
const (
	TxnTypeIn  = "in"
	TxnTypeOut = "out"
)

// 交易状态常量
const (
	TxnStatusPending          = "pending"
	TxnStatusPaymentConfirmed = "payment_confirmed"
	TxnStatusProcessing       = "processing"
	TxnStatusReadyForPickup   = "ready_for_pickup"
	TxnStatusShipping         = "shipping"
	TxnStatusCompleted        = "completed"
	TxnStatusCancelled        = "cancelled"
)

// 用户角色常量
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// 用户等级常量
const (
	UserTypeRegular = "regular"
	UserTypeVIP     = "vip"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 配送方式类型常量
const (
	DeliveryKindPickup  = "pickup"
	DeliveryKindCourier = "courier"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskTxnConfirmTimeout = "transaction:confirm_timeout"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "tk"
)

// 设置键常量
const (
	SettingKeyShopConfig          = "shop_config"
	SettingKeyTxnConfig           = "txn_config"
	SettingFieldShopCurrency      = "currency"
	SettingFieldConfirmExpireMins = "confirm_expire_minutes"
)

// 币种常量
const (
	ShopCurrencyDefault = "IDR"
)
