package rpc

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/state"
	"namechain/native/feed"
	"namechain/native/names"
	"namechain/native/points"
	"namechain/native/revenue"
	"namechain/native/staking"
	"namechain/native/stats"
	"namechain/native/token"
)

// Node aggregates the module engines the RPC surface exposes.
type Node struct {
	Ledger          *state.Ledger
	Forbidden       *names.ForbiddenNames
	NamesFactory    *names.Factory
	Resolver        *names.Resolver
	Minter          *names.Minter
	RevenueFactory  *revenue.Factory
	Stats           *stats.Stats
	StatsMiddleware *stats.Middleware
	Points          *points.ActivityPoints
	Vault           *staking.Vault
	Chat            *feed.Chat
	Comments        *feed.Comments
	RewardToken     *token.Token
	PointsClaim     *token.PointsClaim
	DomainsClaim    *token.DomainsClaim
}

type handlerFunc func(http.ResponseWriter, *RPCRequest)

func (s *Server) methods() map[string]handlerFunc {
	return map[string]handlerFunc{
		"chain_getBalance":          s.handleGetBalance,
		"names_resolve":             s.handleNamesResolve,
		"names_tlds":                s.handleNamesTlds,
		"names_defaultDomains":      s.handleNamesDefaultDomains,
		"names_firstDefaultDomain":  s.handleNamesFirstDefaultDomain,
		"names_tokenURI":            s.handleNamesTokenURI,
		"names_mint":                s.handleNamesMint,
		"minter_mint":               s.handleMinterMint,
		"minter_price":              s.handleMinterPrice,
		"stats_weiSpent":            s.handleStatsWeiSpent,
		"points_get":                s.handlePointsGet,
		"staking_deposit":           s.handleStakingDeposit,
		"staking_withdraw":          s.handleStakingWithdraw,
		"staking_claim":             s.handleStakingClaim,
		"staking_previewClaim":      s.handleStakingPreviewClaim,
		"staking_lockedTimeLeft":    s.handleStakingLockedTimeLeft,
		"feed_postMessage":          s.handleFeedPostMessage,
		"feed_fetchMessages":        s.handleFeedFetchMessages,
		"feed_postComment":          s.handleFeedPostComment,
		"feed_fetchComments":        s.handleFeedFetchComments,
		"revenue_create":            s.handleRevenueCreate,
		"revenue_receive":           s.handleRevenueReceive,
		"revenue_recipients":        s.handleRevenueRecipients,
		"rewards_balance":           s.handleRewardsBalance,
		"rewards_claimPreview":      s.handleRewardsClaimPreview,
		"rewards_claimPoints":       s.handleRewardsClaimPoints,
		"rewards_claimDomain":       s.handleRewardsClaimDomain,
	}
}

func decodeParams(w http.ResponseWriter, req *RPCRequest, out interface{}) bool {
	if len(req.Params) == 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "parameter object required", nil)
		return false
	}
	if err := json.Unmarshal(req.Params, out); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return false
	}
	return true
}

func parseAddress(w http.ResponseWriter, req *RPCRequest, raw, field string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, field+" must be a hex address", raw)
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func parseOptionalAddress(w http.ResponseWriter, req *RPCRequest, raw, field string) (common.Address, bool) {
	if raw == "" {
		return common.Address{}, true
	}
	return parseAddress(w, req, raw, field)
}

func parseWei(w http.ResponseWriter, req *RPCRequest, raw, field string) (*big.Int, bool) {
	if raw == "" {
		return big.NewInt(0), true
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() < 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, field+" must be a decimal wei amount", raw)
		return nil, false
	}
	return v, true
}

func (s *Server) handleGetBalance(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Address string `json:"address"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	addr, ok := parseAddress(w, req, params.Address, "address")
	if !ok {
		return
	}
	writeResult(w, req.ID, s.node.Ledger.BalanceOf(addr).String())
}

func (s *Server) handleNamesResolve(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Name string `json:"name"`
		Tld  string `json:"tld"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	holder := s.node.Resolver.DomainHolder(params.Name, params.Tld)
	writeResult(w, req.ID, map[string]string{
		"holder": holder.Hex(),
		"data":   s.node.Resolver.DomainData(params.Name, params.Tld),
	})
}

func (s *Server) handleNamesTlds(w http.ResponseWriter, req *RPCRequest) {
	tlds := s.node.Resolver.Tlds()
	out := make(map[string]string, len(tlds))
	for name, addr := range tlds {
		out[name] = addr.Hex()
	}
	writeResult(w, req.ID, out)
}

func (s *Server) handleNamesDefaultDomains(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Address string `json:"address"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	addr, ok := parseAddress(w, req, params.Address, "address")
	if !ok {
		return
	}
	writeResult(w, req.ID, s.node.Resolver.DefaultDomains(addr))
}

func (s *Server) handleNamesFirstDefaultDomain(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Address string `json:"address"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	addr, ok := parseAddress(w, req, params.Address, "address")
	if !ok {
		return
	}
	writeResult(w, req.ID, s.node.Resolver.FirstDefaultDomain(addr))
}

func (s *Server) handleNamesTokenURI(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Name string `json:"name"`
		Tld  string `json:"tld"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	writeResult(w, req.ID, s.node.Resolver.DomainTokenURI(params.Name, params.Tld))
}

func (s *Server) handleNamesMint(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller   string `json:"caller"`
		Name     string `json:"name"`
		Tld      string `json:"tld"`
		Holder   string `json:"holder"`
		Referrer string `json:"referrer"`
		Value    string `json:"value"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	caller, ok := parseAddress(w, req, params.Caller, "caller")
	if !ok {
		return
	}
	holder := caller
	if params.Holder != "" {
		if holder, ok = parseAddress(w, req, params.Holder, "holder"); !ok {
			return
		}
	}
	referrer, ok := parseOptionalAddress(w, req, params.Referrer, "referrer")
	if !ok {
		return
	}
	value, ok := parseWei(w, req, params.Value, "value")
	if !ok {
		return
	}
	registry := s.node.NamesFactory.Registry(params.Tld)
	if registry == nil {
		writeEngineError(w, req.ID, names.ErrTldNotFound)
		return
	}
	id, err := registry.Mint(caller, params.Name, holder, referrer, value)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"tokenId": id})
}

func (s *Server) handleMinterMint(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller   string `json:"caller"`
		Name     string `json:"name"`
		Holder   string `json:"holder"`
		Referrer string `json:"referrer"`
		Value    string `json:"value"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	caller, ok := parseAddress(w, req, params.Caller, "caller")
	if !ok {
		return
	}
	holder := caller
	if params.Holder != "" {
		if holder, ok = parseAddress(w, req, params.Holder, "holder"); !ok {
			return
		}
	}
	referrer, ok := parseOptionalAddress(w, req, params.Referrer, "referrer")
	if !ok {
		return
	}
	value, ok := parseWei(w, req, params.Value, "value")
	if !ok {
		return
	}
	id, err := s.node.Minter.Mint(caller, params.Name, holder, referrer, value)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"tokenId": id})
}

func (s *Server) handleMinterPrice(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		NameLength int `json:"nameLength"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	writeResult(w, req.ID, s.node.Minter.Price(params.NameLength).String())
}

func (s *Server) handleStatsWeiSpent(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Address string `json:"address"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	addr, ok := parseAddress(w, req, params.Address, "address")
	if !ok {
		return
	}
	writeResult(w, req.ID, map[string]string{
		"weiSpent":      s.node.Stats.WeiSpent(addr).String(),
		"weiSpentTotal": s.node.Stats.TotalWeiSpent().String(),
	})
}

func (s *Server) handlePointsGet(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Address string `json:"address"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	addr, ok := parseAddress(w, req, params.Address, "address")
	if !ok {
		return
	}
	writeResult(w, req.ID, s.node.Points.Points(addr).String())
}

func (s *Server) handleStakingDeposit(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller string `json:"caller"`
		Amount string `json:"amount"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	caller, ok := parseAddress(w, req, params.Caller, "caller")
	if !ok {
		return
	}
	amount, ok := parseWei(w, req, params.Amount, "amount")
	if !ok {
		return
	}
	if err := s.node.Vault.Deposit(caller, amount); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleStakingWithdraw(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller string `json:"caller"`
		Amount string `json:"amount"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	caller, ok := parseAddress(w, req, params.Caller, "caller")
	if !ok {
		return
	}
	amount, ok := parseWei(w, req, params.Amount, "amount")
	if !ok {
		return
	}
	if err := s.node.Vault.Withdraw(caller, amount); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleStakingClaim(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller string `json:"caller"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	caller, ok := parseAddress(w, req, params.Caller, "caller")
	if !ok {
		return
	}
	if err := s.node.Vault.Claim(caller); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleStakingPreviewClaim(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Address string `json:"address"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	addr, ok := parseAddress(w, req, params.Address, "address")
	if !ok {
		return
	}
	writeResult(w, req.ID, map[string]string{
		"claim":       s.node.Vault.PreviewClaim(addr).String(),
		"futureClaim": s.node.Vault.PreviewFutureClaim(addr).String(),
	})
}

func (s *Server) handleStakingLockedTimeLeft(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Address string `json:"address"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	addr, ok := parseAddress(w, req, params.Address, "address")
	if !ok {
		return
	}
	writeResult(w, req.ID, s.node.Vault.LockedTimeLeft(addr))
}

func (s *Server) handleFeedPostMessage(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller string `json:"caller"`
		URL    string `json:"url"`
		Value  string `json:"value"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	caller, ok := parseAddress(w, req, params.Caller, "caller")
	if !ok {
		return
	}
	value, ok := parseWei(w, req, params.Value, "value")
	if !ok {
		return
	}
	id, err := s.node.Chat.PostMessage(caller, params.URL, value)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"messageId": id})
}

func (s *Server) handleFeedFetchMessages(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		IncludeDeleted bool `json:"includeDeleted"`
		Offset         int  `json:"offset"`
		Limit          int  `json:"limit"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	if params.Limit == 0 {
		params.Limit = 50
	}
	writeResult(w, req.ID, s.node.Chat.FetchMessages(params.IncludeDeleted, params.Offset, params.Limit))
}

func (s *Server) handleFeedPostComment(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller  string `json:"caller"`
		Subject string `json:"subject"`
		URL     string `json:"url"`
		Value   string `json:"value"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	caller, ok := parseAddress(w, req, params.Caller, "caller")
	if !ok {
		return
	}
	subject, ok := parseAddress(w, req, params.Subject, "subject")
	if !ok {
		return
	}
	value, ok := parseWei(w, req, params.Value, "value")
	if !ok {
		return
	}
	id, err := s.node.Comments.PostComment(caller, subject, params.URL, value)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"commentId": id})
}

func (s *Server) handleFeedFetchComments(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Subject        string `json:"subject"`
		IncludeDeleted bool   `json:"includeDeleted"`
		Offset         int    `json:"offset"`
		Limit          int    `json:"limit"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	subject, ok := parseAddress(w, req, params.Subject, "subject")
	if !ok {
		return
	}
	if params.Limit == 0 {
		params.Limit = 50
	}
	writeResult(w, req.ID, s.node.Comments.FetchComments(subject, params.IncludeDeleted, params.Offset, params.Limit))
}

func (s *Server) handleRevenueCreate(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller   string `json:"caller"`
		UniqueID string `json:"uniqueId"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	caller, ok := parseAddress(w, req, params.Caller, "caller")
	if !ok {
		return
	}
	d, err := s.node.RevenueFactory.Create(caller, params.UniqueID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"distributor": d.Address().Hex()})
}

func (s *Server) handleRevenueReceive(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		UniqueID string `json:"uniqueId"`
		From     string `json:"from"`
		Value    string `json:"value"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	from, ok := parseAddress(w, req, params.From, "from")
	if !ok {
		return
	}
	value, ok := parseWei(w, req, params.Value, "value")
	if !ok {
		return
	}
	d, err := s.node.RevenueFactory.DistributorByID(params.UniqueID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if err := d.Receive(from, value); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleRewardsBalance(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Address string `json:"address"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	addr, ok := parseAddress(w, req, params.Address, "address")
	if !ok {
		return
	}
	writeResult(w, req.ID, s.node.RewardToken.BalanceOf(addr).String())
}

func (s *Server) handleRewardsClaimPreview(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Address string `json:"address"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	addr, ok := parseAddress(w, req, params.Address, "address")
	if !ok {
		return
	}
	writeResult(w, req.ID, s.node.PointsClaim.ClaimPreview(addr).String())
}

func (s *Server) handleRewardsClaimPoints(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller string `json:"caller"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	caller, ok := parseAddress(w, req, params.Caller, "caller")
	if !ok {
		return
	}
	amount, err := s.node.PointsClaim.Claim(caller)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"amount": amount.String()})
}

func (s *Server) handleRewardsClaimDomain(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller string `json:"caller"`
		Name   string `json:"name"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	caller, ok := parseAddress(w, req, params.Caller, "caller")
	if !ok {
		return
	}
	amount, err := s.node.DomainsClaim.Claim(caller, params.Name)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"amount": amount.String()})
}

func (s *Server) handleRevenueRecipients(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		UniqueID string `json:"uniqueId"`
	}
	if !decodeParams(w, req, &params) {
		return
	}
	d, err := s.node.RevenueFactory.DistributorByID(params.UniqueID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	type line struct {
		Address    string `json:"address"`
		Label      string `json:"label"`
		Percentage string `json:"percentage"`
	}
	recipients := d.Recipients()
	out := make([]line, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, line{Address: r.Addr.Hex(), Label: r.Label, Percentage: r.Percentage.String()})
	}
	writeResult(w, req.ID, out)
}
