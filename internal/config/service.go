package config

type ServiceConfig struct {
	Name                string `yaml:"name"`
	Environment         string `yaml:"environment"`
	Version             string `yaml:"version"`
	SiteURL             string `yaml:"site_url" validate:"required,url"`
	StripeSecretKey     string `yaml:"stripe_secret_key" validate:"required"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret" validate:"required"`
	JWTSecret           string `yaml:"jwt_secret" validate:"required"`
}
