package client

import (
	"net/http"

	"github.com/cockroachdb/apd/v3"

	"nakula/pkg/core"
)

// WithdrawClient covers the signed wallet endpoints: withdrawals, deposit
// and withdrawal history, deposit addresses, and account status.
type WithdrawClient struct {
	*baseClient
}

// NewWithdrawClient creates a client for the wallet endpoints. Both halves of
// the key pair are required.
func NewWithdrawClient(apiKey, secretKey, baseURL string, opts ...Option) (*WithdrawClient, error) {
	if apiKey == "" || secretKey == "" {
		return nil, &core.ConfigError{Reason: core.ErrNoCredentials.Error()}
	}
	base, err := newBaseClient(core.Credentials{APIKey: apiKey, SecretKey: secretKey}, baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &WithdrawClient{baseClient: base}, nil
}

// Withdraw submits a withdrawal of amount asset to address.
func (c *WithdrawClient) Withdraw(asset, address string, amount *apd.Decimal) *core.Builder {
	return c.request(http.MethodPost, "/wapi/v3/withdraw.html", core.SecuritySigned).
		Param("asset", asset).
		Param("address", address).
		Param("amount", amount)
}

// DepositHistory returns the account's deposit records.
func (c *WithdrawClient) DepositHistory() *core.Builder {
	return c.request(http.MethodGet, "/wapi/v3/depositHistory.html", core.SecuritySigned)
}

// WithdrawHistory returns the account's withdrawal records.
func (c *WithdrawClient) WithdrawHistory() *core.Builder {
	return c.request(http.MethodGet, "/wapi/v3/withdrawHistory.html", core.SecuritySigned)
}

// DepositAddress returns the deposit address for an asset.
func (c *WithdrawClient) DepositAddress(asset string) *core.Builder {
	return c.request(http.MethodGet, "/wapi/v3/depositAddress.html", core.SecuritySigned).
		Param("asset", asset)
}

// AccountStatus returns the account's trading status.
func (c *WithdrawClient) AccountStatus() *core.Builder {
	return c.request(http.MethodGet, "/wapi/v3/accountStatus.html", core.SecuritySigned)
}

// SystemStatus reports whether the exchange wallet system is operating
// normally or under maintenance.
func (c *WithdrawClient) SystemStatus() *core.Builder {
	return c.request(http.MethodGet, "/wapi/v3/systemStatus.html", core.SecurityNone)
}

// TradeFee returns the account's trading fee schedule.
func (c *WithdrawClient) TradeFee() *core.Builder {
	return c.request(http.MethodGet, "/wapi/v3/tradeFee.html", core.SecuritySigned)
}
