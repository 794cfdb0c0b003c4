package models

// Environment is a named network endpoint
type Environment struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	RPCURL string `json:"rpc"`
}

// Script is a forge deployment script discovered in the script directory
type Script struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Target returns the "path:name" reference understood by forge
func (s *Script) Target() string {
	return s.Path + ":" + s.Name
}
