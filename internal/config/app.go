package config

type AppConfig struct {
	Viewer   ViewerConfig
	Identity IdentityConfig
	Push     PushConfig
	Log      LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	viewerCfg, err := LoadViewer()
	if err != nil {
		return AppConfig{}, err
	}
	identityCfg, err := LoadIdentity()
	if err != nil {
		return AppConfig{}, err
	}
	pushCfg, err := LoadPush()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Viewer:   viewerCfg,
		Identity: identityCfg,
		Push:     pushCfg,
		Log:      logCfg,
	}, nil
}
