package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable: рыночные данные не получены, цикл пропускается.
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrOrderRejected: брокер отклонил ордер, автоматического повтора нет.
	ErrOrderRejected = errors.New("order rejected")
	// ErrPositionNotFound: позиция закрыта, штатное завершение наблюдения.
	ErrPositionNotFound = errors.New("position not found")
	// ErrInsufficientMargin: не хватает свободной маржи на новый ордер.
	ErrInsufficientMargin = errors.New("insufficient margin")
	// ErrConfiguration: единственная фатальная ошибка, процесс не стартует.
	ErrConfiguration = errors.New("configuration error")
)

type OrderRejectedError struct {
	Reason string
}

func (e *OrderRejectedError) Error() string { return "order rejected: " + e.Reason }

func (e *OrderRejectedError) Unwrap() error { return ErrOrderRejected }

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// IsFatal reports whether err must stop the process.
func IsFatal(err error) bool { return errors.Is(err, ErrConfiguration) }
