package repository

import "github.com/google/uuid"

func uuidFromByte(b byte) uuid.UUID {
	var arr uuid.UUID
	arr[15] = b
	return arr
}
