package constant

import (
	"github.com/sagernet/sing/common"
	E "github.com/sagernet/sing/common/exceptions"
	F "github.com/sagernet/sing/common/format"
)

type Environment uint8

const (
	EnvironmentStaging Environment = iota
	EnvironmentProduction
)

var (
	environmentToString = map[Environment]string{
		EnvironmentStaging:    "staging",
		EnvironmentProduction: "production",
	}
	StringToEnvironment = common.ReverseMap(environmentToString)
)

func (e Environment) String() string {
	name, loaded := environmentToString[e]
	if !loaded {
		return F.ToString(int(e))
	}
	return name
}

func ParseEnvironment(name string) (Environment, error) {
	switch name {
	case "":
		return EnvironmentStaging, nil
	case "prod":
		return EnvironmentProduction, nil
	}
	environment, loaded := StringToEnvironment[name]
	if !loaded {
		return EnvironmentStaging, E.New("unknown environment: ", name)
	}
	return environment, nil
}
