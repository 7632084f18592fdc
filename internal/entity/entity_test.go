package entity

import "testing"

func TestAttributeBaseFields(t *testing.T) {
	fields := AttributeBaseFields()

	name := fields.Get("name")
	if name == nil {
		t.Fatal("expected name field")
	}
	if !name.Required || !name.Translatable || name.MaxLength != 255 {
		t.Errorf("unexpected name definition %+v", name)
	}

	weight := fields.Get("weight")
	if weight == nil || weight.DefaultValue != 0 {
		t.Errorf("expected weight default 0, got %+v", weight)
	}

	if translatable, ok := fields.IsTranslatable("status"); !ok || !translatable {
		t.Error("expected status to be translatable")
	}
	if _, ok := fields.IsTranslatable("missing"); ok {
		t.Error("unknown field reported as present")
	}
	if typ := fields.Get("type"); typ == nil || !typ.ReadOnly {
		t.Error("expected type to be read only")
	}
}

func TestFieldDefinitionsClone(t *testing.T) {
	fields := AttributeBaseFields()
	clone := fields.Clone()
	clone.Get("status").Translatable = false

	if !fields.Get("status").Translatable {
		t.Error("clone mutated the original definitions")
	}
}

func TestEntityTypeLinks(t *testing.T) {
	route, ok := AttributeTypeEntityType.LinkRoute("collection")
	if !ok || route != "entity.attribute_type.collection" {
		t.Errorf("unexpected collection route %q", route)
	}
	if AttributeTypeEntityType.BundleOf != TypeAttribute {
		t.Error("attribute_type must be the bundle of attribute")
	}
}
