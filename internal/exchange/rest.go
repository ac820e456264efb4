package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"StakePilot/internal/model"
)

// RESTClient implements Client against a Betfair-style exchange REST API.
type RESTClient struct {
	BaseURL        string
	AppKey         string
	SessionToken   string
	CommissionRate decimal.Decimal
	Client         *http.Client
}

// NewRESTClient creates a client with optional proxy support.
func NewRESTClient(baseURL, appKey, sessionToken string, commissionRate decimal.Decimal, proxyURL string) *RESTClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTClient{
		BaseURL:        baseURL,
		AppKey:         appKey,
		SessionToken:   sessionToken,
		CommissionRate: commissionRate,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (c *RESTClient) Name() string { return "exchange-rest" }

// Wire shapes for the exchange API.
type wirePriceSize struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

type wireRunner struct {
	SelectionID  int64  `json:"selectionId"`
	RunnerName   string `json:"runnerName"`
	SortPriority int    `json:"sortPriority"`
	Status       string `json:"status"`
	Ex           struct {
		AvailableToBack []wirePriceSize `json:"availableToBack"`
		AvailableToLay  []wirePriceSize `json:"availableToLay"`
	} `json:"ex"`
}

type wireMarket struct {
	MarketID        string `json:"marketId"`
	MarketStartTime string `json:"marketStartTime"`
	Status          string `json:"status"`
	InPlay          bool   `json:"inplay"`
	TotalMatched    float64 `json:"totalMatched"`
	Event           struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"event"`
	Competition struct {
		Name string `json:"name"`
	} `json:"competition"`
	Runners []wireRunner `json:"runners"`
}

func (c *RESTClient) ListMarkets(maxResults, hoursAhead int) ([]model.Market, error) {
	params := map[string]any{
		"filter": map[string]any{
			"eventTypeIds":    []string{"1"}, // association football
			"marketTypeCodes": []string{"MATCH_ODDS"},
			"marketStartTime": map[string]string{
				"from": time.Now().UTC().Format(time.RFC3339),
				"to":   time.Now().UTC().Add(time.Duration(hoursAhead) * time.Hour).Format(time.RFC3339),
			},
		},
		"maxResults": maxResults,
		"sort":       "MAXIMUM_TRADED",
		"marketProjection": []string{
			"EVENT", "COMPETITION", "MARKET_START_TIME", "RUNNER_DESCRIPTION",
		},
	}
	var wires []wireMarket
	if err := c.call("betting/listMarketCatalogue", params, &wires); err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	markets := make([]model.Market, len(wires))
	for i, w := range wires {
		markets[i] = convertMarket(w)
	}
	return markets, nil
}

func (c *RESTClient) MarketBook(marketID string) (*model.Market, error) {
	params := map[string]any{
		"marketIds": []string{marketID},
		"priceProjection": map[string]any{
			"priceData": []string{"EX_BEST_OFFERS"},
		},
	}
	var wires []wireMarket
	if err := c.call("betting/listMarketBook", params, &wires); err != nil {
		return nil, fmt.Errorf("market book %s: %w", marketID, err)
	}
	if len(wires) == 0 {
		return nil, fmt.Errorf("market book %s: market not found", marketID)
	}
	m := convertMarket(wires[0])
	m.ID = marketID
	return &m, nil
}

func (c *RESTClient) PlaceBet(marketID string, selectionID int64, odds, stake decimal.Decimal) (string, error) {
	params := map[string]any{
		"marketId": marketID,
		"instructions": []map[string]any{{
			"orderType":   "LIMIT",
			"selectionId": selectionID,
			"side":        "BACK",
			"limitOrder": map[string]any{
				"size":            stake.StringFixed(2),
				"price":           odds.InexactFloat64(),
				"persistenceType": "LAPSE",
			},
		}},
	}
	var result struct {
		Status             string `json:"status"`
		ErrorCode          string `json:"errorCode"`
		InstructionReports []struct {
			BetID string `json:"betId"`
		} `json:"instructionReports"`
	}
	if err := c.call("betting/placeOrders", params, &result); err != nil {
		return "", fmt.Errorf("place bet on %s: %w", marketID, err)
	}
	if result.Status != "SUCCESS" || len(result.InstructionReports) == 0 {
		return "", fmt.Errorf("place bet on %s: rejected (%s)", marketID, result.ErrorCode)
	}
	return result.InstructionReports[0].BetID, nil
}

// CheckSettlement polls the market book until the market closes, then reads
// the winning runner and computes net profit after commission.
func (c *RESTClient) CheckSettlement(bet *model.BetDetails) (*model.Settlement, error) {
	params := map[string]any{
		"marketIds": []string{bet.MarketID},
	}
	var wires []struct {
		Status  string `json:"status"`
		Runners []struct {
			SelectionID int64  `json:"selectionId"`
			Status      string `json:"status"`
		} `json:"runners"`
	}
	if err := c.call("betting/listMarketBook", params, &wires); err != nil {
		return nil, fmt.Errorf("check settlement %s: %w", bet.MarketID, err)
	}
	if len(wires) == 0 {
		return nil, fmt.Errorf("check settlement %s: market not found", bet.MarketID)
	}
	book := wires[0]
	if book.Status != model.MarketClosed && book.Status != model.MarketSettled {
		return &model.Settlement{Settled: false}, nil
	}

	won := false
	for _, r := range book.Runners {
		if r.SelectionID == bet.SelectionID && r.Status == "WINNER" {
			won = true
			break
		}
	}

	s := &model.Settlement{Settled: true, Won: won, SettledAt: time.Now().UTC()}
	if won {
		s.GrossProfit = bet.Stake.Mul(bet.Odds.Sub(decimal.NewFromInt(1)))
		s.Commission = s.GrossProfit.Mul(c.CommissionRate)
		s.NetProfit = s.GrossProfit.Sub(s.Commission)
	}
	balance, err := c.AccountBalance()
	if err != nil {
		return nil, fmt.Errorf("check settlement %s: %w", bet.MarketID, err)
	}
	s.NewBalance = balance
	return s, nil
}

func (c *RESTClient) AccountBalance() (decimal.Decimal, error) {
	var result struct {
		AvailableToBetBalance float64 `json:"availableToBetBalance"`
	}
	if err := c.call("account/getAccountFunds", map[string]any{}, &result); err != nil {
		return decimal.Decimal{}, fmt.Errorf("account balance: %w", err)
	}
	return decimal.NewFromFloat(result.AvailableToBetBalance), nil
}

func (c *RESTClient) call(endpoint string, params any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	req, err := http.NewRequest("POST", c.BaseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Application", c.AppKey)
	req.Header.Set("X-Authentication", c.SessionToken)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("call %s: status %d, body: %s", endpoint, resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func convertMarket(w wireMarket) model.Market {
	m := model.Market{
		ID:           w.MarketID,
		EventID:      w.Event.ID,
		EventName:    w.Event.Name,
		Competition:  w.Competition.Name,
		Status:       w.Status,
		InPlay:       w.InPlay,
		TotalMatched: decimal.NewFromFloat(w.TotalMatched),
	}
	if t, err := time.Parse(time.RFC3339, w.MarketStartTime); err == nil {
		m.StartTime = t
	}
	m.Runners = make([]model.Runner, len(w.Runners))
	for i, wr := range w.Runners {
		r := model.Runner{
			SelectionID:  wr.SelectionID,
			Name:         wr.RunnerName,
			SortPriority: wr.SortPriority,
		}
		for _, ps := range wr.Ex.AvailableToBack {
			r.AvailableToBack = append(r.AvailableToBack, model.PriceSize{
				Price: decimal.NewFromFloat(ps.Price),
				Size:  decimal.NewFromFloat(ps.Size),
			})
		}
		for _, ps := range wr.Ex.AvailableToLay {
			r.AvailableToLay = append(r.AvailableToLay, model.PriceSize{
				Price: decimal.NewFromFloat(ps.Price),
				Size:  decimal.NewFromFloat(ps.Size),
			})
		}
		m.Runners[i] = r
	}
	return m
}
