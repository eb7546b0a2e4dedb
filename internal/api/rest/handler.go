package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/scholarly-labs/resource-indexer/internal/api/rest/dto"
	"github.com/scholarly-labs/resource-indexer/internal/cache"
	"github.com/scholarly-labs/resource-indexer/internal/contractsvc"
	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/indexer"
	"github.com/scholarly-labs/resource-indexer/internal/store"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// ListResources retrieves indexed resources with pagination
	// GET /api/v1/resources?resource_type=<type>&limit=<limit>&offset=<offset>&sort_by=<column>&sort_order=<asc|desc>
	ListResources(c *gin.Context)

	// ListResourcesByOwner retrieves the resources currently owned by an address
	// GET /api/v1/resources/owner/:address?limit=<limit>&offset=<offset>
	ListResourcesByOwner(c *gin.Context)

	// ListMarketResources retrieves resources with an active marketplace listing
	// GET /api/v1/resources/market?limit=<limit>&offset=<offset>
	ListMarketResources(c *gin.Context)

	// GetResource retrieves a single resource by its token number
	// GET /api/v1/resources/:tokenId
	GetResource(c *gin.Context)

	// GetResourceTransfers retrieves a resource's ownership history
	// GET /api/v1/resources/:tokenId/transfers
	GetResourceTransfers(c *gin.Context)

	// GetResourceReferences retrieves a resource's citations, both directions
	// GET /api/v1/resources/:tokenId/references
	GetResourceReferences(c *gin.Context)

	// GetPurchaseBreakdown retrieves the marketplace's on-chain cost split
	// GET /api/v1/resources/:tokenId/purchase-breakdown
	GetPurchaseBreakdown(c *gin.Context)

	// CheckAccess reports whether an address holds a usable access grant
	// GET /api/v1/access/check?resource_id=<id>&address=<address>
	CheckAccess(c *gin.Context)

	// MintResource mints a new resource (requires authentication)
	// POST /api/v1/resources/mint
	MintResource(c *gin.Context)

	// ListToken prepares a signed marketplace listing
	// POST /api/v1/market/list
	ListToken(c *gin.Context)

	// BuyToken prepares a signed marketplace purchase
	// POST /api/v1/market/buy
	BuyToken(c *gin.Context)

	// UnlistToken removes a marketplace listing (requires authentication)
	// POST /api/v1/market/unlist
	UnlistToken(c *gin.Context)

	// CreateReference records a citation between resources (requires authentication)
	// POST /api/v1/references
	CreateReference(c *gin.Context)

	// PurchaseAccess buys an access grant for a resource
	// POST /api/v1/access/purchase
	PurchaseAccess(c *gin.Context)

	// UseAccess consumes one use of an access grant
	// POST /api/v1/access/use
	UseAccess(c *gin.Context)

	// TriggerResync replays a block range through the sync engine (requires authentication)
	// POST /api/v1/indexer/resync
	TriggerResync(c *gin.Context)

	// HealthCheck returns the health status of the API and the sync engine
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store     store.Store
	cache     cache.Cache
	contracts contractsvc.Service
	engine    indexer.Engine
}

// NewHandler creates a new REST API handler
func NewHandler(st store.Store, ca cache.Cache, contracts contractsvc.Service, engine indexer.Engine) Handler {
	return &handler{
		store:     st,
		cache:     ca,
		contracts: contracts,
		engine:    engine,
	}
}

// parseTokenID parses the :tokenId path parameter
func parseTokenID(c *gin.Context) (uint64, bool) {
	tokenID, err := strconv.ParseUint(c.Param("tokenId"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid token ID", c.Param("tokenId"))
		return 0, false
	}
	return tokenID, true
}

// ListResources retrieves indexed resources with pagination
func (h *handler) ListResources(c *gin.Context) {
	params, err := ParseListResourcesQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	// The list key family only encodes pagination and sort, so filtered
	// queries bypass the cache
	useCache := params.ResourceType == ""
	key := cache.ResourceListKey(params.Limit, params.Offset, params.SortBy+":"+string(params.SortOrder))
	if useCache {
		var cached dto.ResourceList
		if h.cache.Get(ctx, key, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	rows, total, err := h.store.GetResourcesByFilter(ctx, store.ResourceQueryFilter{
		ResourceType: params.ResourceType,
		Limit:        params.Limit,
		Offset:       params.Offset,
		SortBy:       params.SortBy,
		SortDesc:     params.SortOrder.Desc(),
	})
	if err != nil {
		respondInternalError(c, err, "Failed to list resources")
		return
	}

	response := dto.ResourceList{
		Resources: dto.FromResources(rows),
		Total:     total,
		Limit:     params.Limit,
		Offset:    params.Offset,
	}
	if useCache {
		h.cache.Set(ctx, key, response)
	}

	c.JSON(http.StatusOK, response)
}

// ListResourcesByOwner retrieves the resources currently owned by an address
func (h *handler) ListResourcesByOwner(c *gin.Context) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		respondBadRequest(c, "Invalid owner address", address)
		return
	}
	owner := domain.NormalizeAddress(address)

	params, err := ParseListResourcesQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	key := cache.UserResourcesKey(owner, params.Limit, params.Offset)
	var cached dto.ResourceList
	if h.cache.Get(ctx, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, total, err := h.store.GetResourcesByFilter(ctx, store.ResourceQueryFilter{
		Owner:  owner,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		respondInternalError(c, err, "Failed to list resources by owner")
		return
	}

	response := dto.ResourceList{
		Resources: dto.FromResources(rows),
		Total:     total,
		Limit:     params.Limit,
		Offset:    params.Offset,
	}
	h.cache.Set(ctx, key, response)

	c.JSON(http.StatusOK, response)
}

// ListMarketResources retrieves resources with an active marketplace listing
func (h *handler) ListMarketResources(c *gin.Context) {
	params, err := ParseListResourcesQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	key := cache.MarketListKey(params.Limit, params.Offset)
	var cached dto.ResourceList
	if h.cache.Get(ctx, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, total, err := h.store.GetResourcesByFilter(ctx, store.ResourceQueryFilter{
		ListedOnly: true,
		Limit:      params.Limit,
		Offset:     params.Offset,
	})
	if err != nil {
		respondInternalError(c, err, "Failed to list market resources")
		return
	}

	response := dto.ResourceList{
		Resources: dto.FromResources(rows),
		Total:     total,
		Limit:     params.Limit,
		Offset:    params.Offset,
	}
	h.cache.Set(ctx, key, response)

	c.JSON(http.StatusOK, response)
}

// GetResource retrieves a single resource by its token number
func (h *handler) GetResource(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	key := cache.ResourceKey(tokenID)
	var cached dto.Resource
	if h.cache.Get(ctx, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	resource, err := h.store.GetResourceByTokenID(ctx, tokenID)
	if err != nil {
		respondInternalError(c, err, "Failed to get resource")
		return
	}
	if resource == nil {
		respondNotFound(c, "Resource not found")
		return
	}

	response := dto.FromResource(resource)
	h.cache.Set(ctx, key, response)

	c.JSON(http.StatusOK, response)
}

// GetResourceTransfers retrieves a resource's ownership history
func (h *handler) GetResourceTransfers(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	resource, err := h.store.GetResourceByTokenID(ctx, tokenID)
	if err != nil {
		respondInternalError(c, err, "Failed to get resource")
		return
	}
	if resource == nil {
		respondNotFound(c, "Resource not found")
		return
	}

	transfers, err := h.store.GetTransfers(ctx, tokenID)
	if err != nil {
		respondInternalError(c, err, "Failed to get transfers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token_id":  tokenID,
		"transfers": dto.FromTransfers(transfers),
	})
}

// GetResourceReferences retrieves a resource's citations, both directions
func (h *handler) GetResourceReferences(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	references, err := h.store.GetReferences(ctx, tokenID)
	if err != nil {
		respondInternalError(c, err, "Failed to get references")
		return
	}

	citations, err := h.store.GetCitations(ctx, tokenID)
	if err != nil {
		respondInternalError(c, err, "Failed to get citations")
		return
	}

	c.JSON(http.StatusOK, dto.ReferenceList{
		References: dto.FromReferences(references),
		CitedBy:    dto.FromReferences(citations),
	})
}

// GetPurchaseBreakdown retrieves the marketplace's on-chain cost split
func (h *handler) GetPurchaseBreakdown(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	breakdown, err := h.contracts.PurchaseBreakdown(c.Request.Context(), tokenID)
	if err != nil {
		respondDomainError(c, err, "Failed to get purchase breakdown")
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// CheckAccess reports whether an address holds a usable access grant
func (h *handler) CheckAccess(c *gin.Context) {
	params, err := ParseAccessCheckQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if params.ResourceID == 0 {
		respondBadRequest(c, "resource_id is required")
		return
	}
	if !common.IsHexAddress(params.Address) {
		respondBadRequest(c, "Invalid address", params.Address)
		return
	}
	address := domain.NormalizeAddress(params.Address)

	grant, err := h.store.GetActiveAccessToken(c.Request.Context(), params.ResourceID, address)
	if err != nil {
		respondInternalError(c, err, "Failed to check access")
		return
	}

	// An expired grant keeps its is_active row until a use or burn is
	// indexed, so the expiry is re-checked here.
	usable := grant != nil && grant.ExpiryTime.After(time.Now())

	response := dto.AccessCheck{
		ResourceTokenID: params.ResourceID,
		Address:         address,
		HasAccess:       usable,
	}
	if usable {
		response.AccessToken = dto.FromAccessToken(grant)
	}

	c.JSON(http.StatusOK, response)
}

// MintResource mints a new resource through the service wallet
func (h *handler) MintResource(c *gin.Context) {
	var req dto.MintResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	input := contractsvc.MintInput{
		Title:        req.Title,
		Description:  req.Description,
		ContentHash:  req.ContentHash,
		ResourceType: req.ResourceType,
		Authors:      domain.NormalizeAddresses(req.Authors),
		Royalty:      domain.DEFAULT_ROYALTY_PERCENTAGE,
	}
	if req.Royalty != nil {
		input.Royalty = *req.Royalty
	}

	result, err := h.contracts.MintResource(c.Request.Context(), input)
	if err != nil {
		respondDomainError(c, err, "Failed to mint resource")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListToken prepares a signed marketplace listing
func (h *handler) ListToken(c *gin.Context) {
	var req dto.ListTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	call, err := h.contracts.ListToken(c.Request.Context(), req.TokenID, req.Price, req.Signature)
	if err != nil {
		respondDomainError(c, err, "Failed to prepare listing")
		return
	}

	c.JSON(http.StatusOK, call)
}

// BuyToken prepares a signed marketplace purchase
func (h *handler) BuyToken(c *gin.Context) {
	var req dto.BuyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	call, err := h.contracts.BuyToken(c.Request.Context(), req.TokenID, req.Price, req.Signature)
	if err != nil {
		respondDomainError(c, err, "Failed to prepare purchase")
		return
	}

	c.JSON(http.StatusOK, call)
}

// UnlistToken removes a marketplace listing through the service wallet
func (h *handler) UnlistToken(c *gin.Context) {
	var req dto.UnlistTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result, err := h.contracts.UnlistToken(c.Request.Context(), req.TokenID)
	if err != nil {
		respondDomainError(c, err, "Failed to unlist token")
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateReference records a citation between resources
func (h *handler) CreateReference(c *gin.Context) {
	var req dto.CreateReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.contracts.CreateReference(c.Request.Context(), req.SourceTokenID, req.TargetTokenID, req.Description)
	if err != nil {
		respondDomainError(c, err, "Failed to create reference")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// PurchaseAccess buys an access grant for a resource
func (h *handler) PurchaseAccess(c *gin.Context) {
	var req dto.PurchaseAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.contracts.PurchaseAccessToken(c.Request.Context(), req.ResourceTokenID, req.Signature)
	if err != nil {
		respondDomainError(c, err, "Failed to purchase access")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// UseAccess consumes one use of an access grant
func (h *handler) UseAccess(c *gin.Context) {
	var req dto.UseAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.contracts.UseAccess(c.Request.Context(), req.AccessTokenID, req.Signature)
	if err != nil {
		respondDomainError(c, err, "Failed to use access")
		return
	}

	c.JSON(http.StatusOK, result)
}

// TriggerResync replays a block range through the sync engine
func (h *handler) TriggerResync(c *gin.Context) {
	var req dto.ResyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.engine.Resync(c.Request.Context(), req.FromBlock, req.ToBlock); err != nil {
		respondDomainError(c, err, "Failed to resync")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "completed",
		"from_block": req.FromBlock,
		"to_block":   req.ToBlock,
	})
}

// HealthCheck returns the health status of the API and the sync engine
func (h *handler) HealthCheck(c *gin.Context) {
	health, err := h.engine.Health(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"service": "resource-indexer",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "resource-indexer",
		"sync":    health,
	})
}
