package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"AmigoCRMBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	WhatsApp struct {
		// CountryCode and MobilePrefix drive phone canonicalization:
		// 10-digit numbers are assumed local to CountryCode, and the
		// historical CountryCode+MobilePrefix form is collapsed.
		CountryCode  string `yaml:"country_code" env-default:"52"`
		MobilePrefix string `yaml:"mobile_prefix" env-default:"1"`
		StorePath    string `yaml:"store_path" env-default:"whatsapp.db"`
		MediaPath    string `yaml:"media_path" env-default:"media"`
	} `yaml:"whatsapp"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:""`
	} `yaml:"mongo"`
	Campaign struct {
		// Pause between consecutive sends, in milliseconds.
		SendDelayMs int `yaml:"send_delay_ms" env-default:"1500"`
	} `yaml:"campaign"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9200"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
