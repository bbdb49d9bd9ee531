package service

import "errors"

var (
	// ErrUserNotFound is returned when a selected display name has no user record.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnknownRarity is returned when rarity sorting meets a value outside the tier list.
	ErrUnknownRarity = errors.New("unknown rarity")

	// ErrNoSelection is returned when a view is requested before any user was selected.
	ErrNoSelection = errors.New("no user selected")

	// ErrInvalidParam is returned for unrecognised sort, filter or mode values.
	ErrInvalidParam = errors.New("invalid parameter")
)

// Empty-state notices shown by the dashboard.
const (
	NoticeUserNotFound = "Usuário não encontrado"
	NoticeNoCards      = "Nenhuma carta encontrada"
	NoticeNoRecords    = "Nenhum registro encontrado"
)
