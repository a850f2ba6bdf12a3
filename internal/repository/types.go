package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   string
	Search       string
	OnlyActive   bool
	WithCategory bool
}

// TransactionListFilter 查询交易列表的过滤条件
type TransactionListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Type        string
	Status      string
	TxnNo       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Role     string
	Type     string
	Status   string
}
