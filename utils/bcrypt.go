package utils

import "golang.org/x/crypto/bcrypt"

func CompareSecret(hashed string, normal string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normal))
}
