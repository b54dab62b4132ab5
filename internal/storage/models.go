package storage

import "database/sql"

type Transaction struct {
	ID            int64
	UserID        int64
	Date          string
	Title         string
	AmountCents   int64
	Category      string
	PaymentMethod string
	Notes         string
}

type Budget struct {
	ID                int64
	UserID            int64
	Category          string
	MonthlyLimitCents int64
}

type RecurringTransaction struct {
	ID                int64
	UserID            int64
	StartDate         string
	EndDate           sql.NullString
	RepetitionType    string
	Title             string
	AmountCents       int64
	Category          string
	LastExecutionDate sql.NullString
}

type CategoryTotal struct {
	Category    string
	TotalAmount int64
}
