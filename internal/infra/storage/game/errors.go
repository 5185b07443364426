package game

import "errors"

var (
	// ErrGameNotFound возвращается, когда игра не найдена
	ErrGameNotFound = errors.New("game.repository: game not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("game.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("game.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("game.repository: failed to scan row")
)
