package importer

import (
	"context"

	"github.com/jpcardenas/archivador/internal/catalog"
	"github.com/jpcardenas/archivador/internal/records"
)

func init() {
	Register(usersProfile)
}

// usersProfile maps account imports. The email column rejects addresses
// already in the system and addresses accepted earlier in the same
// batch; the password column stores a bcrypt hash, defaulting when
// blank.
var usersProfile = &Profile{
	Key:   "users",
	Name:  "Usuarios",
	Title: "Usuarios",
	Columns: []ColumnSpec{
		{
			Field: "name", Header: "Nombre *", Width: 20,
			Required: true, RequiredMsg: "Nombre es requerido", Kind: KindText,
		},
		{Field: "last_name", Header: "Apellido", Width: 20, Kind: KindText},
		{
			Field: "email", Header: "Correo Electrónico *", Width: 30,
			Required: true, RequiredMsg: "Correo electrónico es requerido",
			Kind: KindEmail, Lookup: catalog.LookupUserEmail,
		},
		{Field: "phone", Header: "Teléfono", Width: 15, Kind: KindText},
		{Field: "document_number", Header: "Documento de Identidad", Width: 20, Kind: KindText},
		{
			Field: "organizational_unit", Header: "Unidad Organizacional", Width: 25,
			Kind: KindCatalog, Lookup: catalog.LookupUnit,
			NotFound: "Unidad Organizacional", Sheet: "Unidades",
		},
		{
			Field: "password", Header: "Contraseña (mín. 8 caracteres)", Width: 30,
			Kind: KindPassword, InvalidMsg: "La contraseña debe tener al menos 8 caracteres",
		},
		{
			Field: "role", Header: "Rol", Width: 20,
			Kind: KindCatalog, Lookup: catalog.LookupRole,
			NotFound: "Rol", Sheet: "Roles",
		},
	},
	Notes: []string{
		"- Los campos marcados con * son obligatorios",
		"- Si no se proporciona contraseña, se asignará \"" + NotePasswordToken + "\" por defecto",
		"- El correo electrónico debe ser único en el sistema",
	},
}

// UserCreate adapts a validated row into a user account and persists
// it, attaching the resolved role.
func UserCreate(store *records.UserStore) CreateFunc {
	return func(ctx context.Context, row *Row) error {
		name, _ := row.Text("name")
		email, _ := row.Text("email")
		hash, _ := row.Text("password")
		u := &records.User{
			Name:                 name,
			LastName:             row.TextPtr("last_name"),
			Email:                email,
			Phone:                row.TextPtr("phone"),
			DocumentNumber:       row.TextPtr("document_number"),
			OrganizationalUnitID: row.ID("organizational_unit"),
			PasswordHash:         hash,
			RoleID:               row.ID("role"),
			IsActive:             true,
		}
		return store.Create(ctx, u)
	}
}
