package navigation

import "github.com/prohmpiriya/ecom-storefront/internal/domain"

// Route is one navigable destination and the roles allowed to open it.
// Public routes have Public set; protected routes with no Roles admit any
// authenticated user.
type Route struct {
	Path   string
	Public bool
	Roles  []domain.Role
}

var (
	adminOnly       = []domain.Role{domain.RoleAdmin}
	sellerOnly      = []domain.Role{domain.RoleSeller}
	catalogManagers = []domain.Role{domain.RoleAdmin, domain.RoleSeller}
)

// Routes is the route table of the storefront
var Routes = []Route{
	{Path: Login, Public: true},
	{Path: Register, Public: true},
	{Path: ForgotPassword, Public: true},
	{Path: ResetPassword, Public: true},
	{Path: Unauthorized, Public: true},
	{Path: AdminRegister, Roles: adminOnly},
	{Path: Home},
	{Path: Products},
	{Path: ProductCreate, Roles: catalogManagers},
	{Path: ProductEdit, Roles: catalogManagers},
	{Path: ProductDetail},
	{Path: SellerDashboard, Roles: sellerOnly},
	{Path: AdminDashboard, Roles: adminOnly},
	{Path: AdminUsers, Roles: adminOnly},
	{Path: AdminCategories, Roles: adminOnly},
	{Path: AdminApproval, Roles: adminOnly},
}

// Lookup returns the route registered for path
func Lookup(path string) (Route, bool) {
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}
