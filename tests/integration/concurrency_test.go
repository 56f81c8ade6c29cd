package integration

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentCreditsSameWallet verifies the locking behavior for the
// canonical interleaving: two credits on a fresh wallet must both observe the
// other's write, ending at exactly the sum.
func TestConcurrentCreditsSameWallet(t *testing.T) {
	app := newTestApp(t)

	amounts := []int64{1000, 1500} // 10.00 and 15.00 in minor units
	var wg sync.WaitGroup
	for i, amount := range amounts {
		wg.Add(1)
		go func(i int, amount int64) {
			defer wg.Done()
			body := fmt.Sprintf(`{"owner_id":"emp-c","owner_type":"employer","amount":%d,"reason":"topup","idempotency_key":"cc:%d"}`, amount, i)
			req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/wallet/credit", bytes.NewBufferString(body))
			req.Header.Set("X-Admin-Key", testAdminKey)
			resp, err := http.DefaultClient.Do(req)
			if err == nil {
				resp.Body.Close()
			}
		}(i, amount)
	}
	wg.Wait()

	balance, ok := app.ledger.balanceOf("emp-c")
	require.True(t, ok)
	assert.Equal(t, int64(2500), balance)
	assert.Equal(t, 2, app.ledger.transactionCount())
}

// TestConcurrentMixedLoad hammers one wallet with parallel credits and
// debits and checks the final balance matches the arithmetic.
func TestConcurrentMixedLoad(t *testing.T) {
	app := newTestApp(t)

	// Seed enough balance that every debit can succeed regardless of order.
	seed := `{"owner_id":"emp-m","owner_type":"employer","amount":1000000,"reason":"seed"}`
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/wallet/credit", bytes.NewBufferString(seed))
	req.Header.Set("X-Admin-Key", testAdminKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	const workers = 40
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kind := "credit"
			if i%2 == 1 {
				kind = "debit"
			}
			body := fmt.Sprintf(`{"owner_id":"emp-m","owner_type":"employer","amount":100,"reason":"load_%d"}`, i)
			req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/wallet/"+kind, bytes.NewBufferString(body))
			req.Header.Set("X-Admin-Key", testAdminKey)
			resp, err := http.DefaultClient.Do(req)
			if err == nil {
				resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()

	// 20 credits and 20 debits of 100 cancel out.
	balance, ok := app.ledger.balanceOf("emp-m")
	require.True(t, ok)
	assert.Equal(t, int64(1000000), balance)
	assert.Equal(t, 1+workers, app.ledger.transactionCount())
}

// TestConcurrentWebhookDeliveriesOnePayment floods the webhook endpoint with
// the same capture event in parallel. Exactly one credit may survive.
func TestConcurrentWebhookDeliveriesOnePayment(t *testing.T) {
	app := newTestApp(t)

	body := capturedWebhookBody("pay_race", "emp-r", 75000)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := app.postWebhook(t, body, true)
			resp.Body.Close()
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		balance, ok := app.ledger.balanceOf("emp-r")
		return ok && balance == 75000
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	balance, _ := app.ledger.balanceOf("emp-r")
	assert.Equal(t, int64(75000), balance)
	assert.Equal(t, 1, app.ledger.transactionCount())
}
