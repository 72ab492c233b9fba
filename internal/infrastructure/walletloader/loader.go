package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"portfolio_reporter/internal/app/port"
	"portfolio_reporter/internal/domain/entity"
)

const (
	defaultWalletFilePath = "data/wallets.txt"

	base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	minAddressLen  = 32
	maxAddressLen  = 44
)

// WalletFileLoader implements the port.WalletProvider interface by loading wallets from a file.
// The file holds one base58 address per line; blank lines and lines starting with # are ignored.
type WalletFileLoader struct {
	filePath string
	logger   port.Logger
}

// NewWalletFileLoader creates a new WalletFileLoader. An empty path uses data/wallets.txt.
func NewWalletFileLoader(filePath string, logger port.Logger) *WalletFileLoader {
	if filePath == "" {
		filePath = defaultWalletFilePath
	}
	return &WalletFileLoader{
		filePath: filePath,
		logger:   logger,
	}
}

// IsValidAddress reports whether s looks like a Solana public key in base58.
func IsValidAddress(s string) bool {
	if len(s) < minAddressLen || len(s) > maxAddressLen {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(base58Alphabet, r) {
			return false
		}
	}
	return true
}

// GetWallets reads wallet addresses from the configured file path.
// Duplicate addresses are returned once, in first-seen order.
func (l *WalletFileLoader) GetWallets() ([]entity.Wallet, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var wallets []entity.Wallet
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !IsValidAddress(line) {
			l.logger.Warn("Skipping invalid wallet address format", "file", l.filePath, "line_number", lineNum, "address", line)
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		wallets = append(wallets, entity.Wallet{Address: line})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", l.filePath, err)
	}

	l.logger.Info("Wallets loaded successfully from file", "count", len(wallets), "path", l.filePath)
	return wallets, nil
}
