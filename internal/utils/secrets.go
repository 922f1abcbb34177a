package utils

import (
	"fmt"
	"os"
	"strings"
)

// ReadSecret читает секрет из файла в стандартном пути Docker Secrets.
// Если файла нет, пробует переменную окружения с тем же именем в верхнем
// регистре — удобно для локального запуска без Docker.
func ReadSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}

	envName := strings.ToUpper(secretName)
	if value := strings.TrimSpace(os.Getenv(envName)); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("secret %s not found: no file %s and env %s is empty", secretName, filePath, envName)
}
