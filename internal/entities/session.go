package entities

// Session - данные пользовательской сессии, хранимые на сервере.
type Session struct {
	UserID      int64  `json:"user_id"`
	UserEmail   string `json:"user_email"`
	UserName    string `json:"user_name"`
	IsSuperuser bool   `json:"is_superuser"`
}
