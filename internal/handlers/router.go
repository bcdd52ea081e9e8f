package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/avolkov/storecatalog/internal/handlers/middleware"
	"github.com/avolkov/storecatalog/internal/logger"
	"github.com/avolkov/storecatalog/internal/models"
	"github.com/avolkov/storecatalog/internal/service/auth"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	catalogService catalogService,
	userService userService,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.Auth(authService)
	withFresh := middleware.AuthFresh(authService)
	withAdmin := middleware.AuthAdmin(authService)

	mux := http.NewServeMux()

	mux.Handle("POST /register", handleRegister(authService, logger))
	mux.Handle("POST /login", handleLogin(authService, logger))
	mux.Handle("POST /refresh", handleTokenRefresh(authService, logger))
	mux.Handle("POST /log_out", handleLogout(authService, logger))

	mux.Handle("GET /user/{id}", withAuth(handleGetUser(userService, logger)))
	mux.Handle("DELETE /user/{id}", withAdmin(handleDeleteUser(userService, logger)))

	mux.Handle("GET /store", handleListStores(catalogService, logger))
	mux.Handle("POST /store", withAuth(handleCreateStore(catalogService, logger)))
	mux.Handle("GET /store/{id}", handleGetStore(catalogService, logger))
	mux.Handle("DELETE /store/{id}", withAdmin(handleDeleteStore(catalogService, logger)))

	mux.Handle("GET /item", withAuth(handleListItems(catalogService, logger)))
	mux.Handle("POST /item", withFresh(handleCreateItem(catalogService, logger)))
	mux.Handle("GET /item/{id}", withAuth(handleGetItem(catalogService, logger)))
	mux.Handle("PUT /item/{id}", withAuth(handleUpdateItem(catalogService, logger)))
	mux.Handle("DELETE /item/{id}", withAdmin(handleDeleteItem(catalogService, logger)))

	mux.Handle("GET /store/{id}/tag", withAuth(handleListStoreTags(catalogService, logger)))
	mux.Handle("POST /store/{id}/tag", withAuth(handleCreateTag(catalogService, logger)))
	mux.Handle("GET /tag/{id}", withAuth(handleGetTag(catalogService, logger)))
	mux.Handle("DELETE /tag/{id}", withAdmin(handleDeleteTag(catalogService, logger)))

	mux.Handle("POST /item/{item_id}/tag/{tag_id}", withAuth(handleLinkItemTag(catalogService, logger)))
	mux.Handle("DELETE /item/{item_id}/tag/{tag_id}", withAuth(handleUnlinkItemTag(catalogService, logger)))

	handler := chain(mux,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user with username and password
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	Register(ctx context.Context, username string, password string) (models.User, error)

	// Login user and return a token pair
	// Has to return apperrors.ErrInvalidCredentials for unknown user or bad password
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Mint a new non fresh access token using a refresh token
	Refresh(ctx context.Context, refreshToken string) (models.IssuedToken, error)

	// Revoke the access token and drop the cached user token
	Logout(ctx context.Context, accessToken string) error

	// Validate a token and return the claims. Used by the auth middlewares
	Validate(ctx context.Context, token string, opts auth.ValidateOptions) (models.Claims, error)
}

type catalogService interface {
	CreateStore(ctx context.Context, name string) (models.Store, error)
	GetStore(ctx context.Context, storeID int64) (models.Store, error)
	ListStores(ctx context.Context) ([]models.Store, error)
	DeleteStore(ctx context.Context, storeID int64) error

	CreateItem(ctx context.Context, item models.Item) (models.Item, error)
	GetItem(ctx context.Context, itemID int64) (models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	UpdateItem(ctx context.Context, itemID int64, item models.Item) (models.Item, error)
	DeleteItem(ctx context.Context, itemID int64) error

	CreateTag(ctx context.Context, storeID int64, name string) (models.Tag, error)
	GetTag(ctx context.Context, tagID int64) (models.Tag, error)
	ListStoreTags(ctx context.Context, storeID int64) ([]models.Tag, error)
	DeleteTag(ctx context.Context, tagID int64) error

	LinkItemTag(ctx context.Context, itemID int64, tagID int64) error
	UnlinkItemTag(ctx context.Context, itemID int64, tagID int64) error
	ListItemTags(ctx context.Context, itemID int64) ([]models.Tag, error)
}

type userService interface {
	// Has to return apperrors.ErrUserNotFound if user not found
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// pathID parses a numeric path segment. Non numeric values mean the route
// does not point at an existing resource, callers respond 404
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
