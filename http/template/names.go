package template

// Templates embedded in this package.
const (
	AuthenticatedTmpl = "tmpl/authenticated.tmpl"
	ErrTmpl           = "tmpl/error.tmpl"
	FormTmpl          = "tmpl/form.tmpl"
	LayoutTmpl        = "tmpl/layout.tmpl"
	LoadingTmpl       = "tmpl/loading.tmpl"
	MaintenanceTmpl   = "tmpl/maintenance.tmpl"
)
