package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001

	// ErrMarketNotFound no market
	ErrMarketNotFound ErrorCode = 100100
	// ErrMarketAlreadyExists market listed twice
	ErrMarketAlreadyExists ErrorCode = 100101
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100102
	// ErrInvalidParams market or strategy params out of range
	ErrInvalidParams ErrorCode = 100103
	// ErrDebtNotFound no debt
	ErrDebtNotFound ErrorCode = 100104
	// ErrInsufficientLiquidity operation exceeds available liquidity
	ErrInsufficientLiquidity ErrorCode = 100105
	// ErrInsufficientCollaterals position would become under-collateralized
	ErrInsufficientCollaterals ErrorCode = 100106
	// ErrPriceNotFound no oracle price for an active asset
	ErrPriceNotFound ErrorCode = 100107
	// ErrNotLiquidatable health factor at or above one
	ErrNotLiquidatable ErrorCode = 100108
	// ErrDepositNotAllowed deposit not allowed
	ErrDepositNotAllowed ErrorCode = 100109
	// ErrWithdrawNotAllowed withdraw not allowed
	ErrWithdrawNotAllowed ErrorCode = 100110
	// ErrBorrowNotAllowed borrow not allowed
	ErrBorrowNotAllowed ErrorCode = 100111
	// ErrRepayNotAllowed repay not allowed
	ErrRepayNotAllowed ErrorCode = 100112

	// ErrUnderflow subtraction below zero
	ErrUnderflow ErrorCode = 100200
	// ErrDivideByZero division by zero
	ErrDivideByZero ErrorCode = 100201
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
