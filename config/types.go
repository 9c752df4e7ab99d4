package config

type AppConfig struct {
	DBDriver   string           `yaml:"db_driver" env:"SOPORTE_DB_DRIVER" env-default:"sqlite"`
	DBURL      string           `yaml:"db_url" env:"SOPORTE_DB_URL"`
	DBPath     string           `yaml:"db_path" env:"SOPORTE_DB_PATH" env-default:"data/soporte.db"`
	ListenAddr string           `yaml:"listen_addr" env:"SOPORTE_LISTEN_ADDR" env-default:"0.0.0.0:8000"`
	AppEnv     string           `yaml:"app_env" env:"SOPORTE_APP_ENV"`
	LogLevel   string           `yaml:"log_level" env:"SOPORTE_LOG_LEVEL" env-default:"info"`
	Incidents  IncidentsConfig  `yaml:"incidents"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
}

type IncidentsConfig struct {
	PrincipalTechnician string `yaml:"principal_technician" env:"SOPORTE_PRINCIPAL_TECHNICIAN" env-default:"Técnico principal"`
}

type ReconcilerConfig struct {
	Enabled  bool   `yaml:"enabled" env:"SOPORTE_RECONCILER_ENABLED" env-default:"false"`
	Schedule string `yaml:"schedule" env:"SOPORTE_RECONCILER_SCHEDULE" env-default:"@every 5m"`
}

const defaultPrincipalTechnician = "Técnico principal"

// PrincipalTechnician returns the technician sentinel auto-assigned to
// high-priority incidents.
func (c *AppConfig) PrincipalTechnician() string {
	if c == nil || c.Incidents.PrincipalTechnician == "" {
		return defaultPrincipalTechnician
	}
	return c.Incidents.PrincipalTechnician
}
