package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// テーブル重複チェックと書き込みは必ず同じTxで行う。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
