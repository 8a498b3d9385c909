package registry

import (
	"testing"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/engine"
)

type idleController struct{}

func (idleController) Decide(engine.Paddle, engine.Ball, engine.Arena) engine.Intent {
	return engine.Intent{}
}

func TestRegisterAndCreate(t *testing.T) {
	Register(90, "test-idle", "Idle", func(config.AIConfig) engine.Controller {
		return idleController{}
	})

	if !Exists(90) {
		t.Fatal("Exists(90) = false, expected true")
	}
	c, err := Create(90, config.AIConfig{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, ok := c.(idleController); !ok {
		t.Errorf("Create() = %T, expected idleController", c)
	}

	if _, err := CreateByName("test-idle", config.AIConfig{}); err != nil {
		t.Errorf("CreateByName() error = %v", err)
	}
	if info, ok := Lookup(90); !ok || info.Title != "Idle" {
		t.Errorf("Lookup(90) = %+v, %v", info, ok)
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create(-42, config.AIConfig{}); err == nil {
		t.Error("Create() on unknown level should fail")
	}
	if _, err := CreateByName("nope", config.AIConfig{}); err == nil {
		t.Error("CreateByName() on unknown name should fail")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register(91, "test-dup", "Dup", func(config.AIConfig) engine.Controller { return idleController{} })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register() should panic")
		}
	}()
	Register(91, "test-dup-2", "Dup", func(config.AIConfig) engine.Controller { return idleController{} })
}

func TestListSorted(t *testing.T) {
	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].Level > list[i].Level {
			t.Fatalf("List() not sorted: %+v", list)
		}
	}
}
