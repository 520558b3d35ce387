package database

import "testing"

func TestGenerateModuleCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"Módulo 7", "MOD07"},
		{"MODULO 12", "MOD12"},
		{"modulo_3", "MOD03"},
		{"Módulo 10 - Retratos", "MOD10"},
		{"Correcciones Finales", "CORR"},
		{"Dibujos libres", "DRAW"},
		{"Lives", "LIVE"},
		{"Evaluación final", "EVAL"},
		{"Autoevaluación", "AUTO"},
		{"Examen parcial", "EXAM"},
		{"Tareas extra", "TASK"},
		{"xyz123", "XYZ1"},
		{"Acuarela", "ACUA"},
		{"¿?¡!", "MOD0"},
		{"", "MOD0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GenerateModuleCode(tt.name); got != tt.want {
				t.Errorf("GenerateModuleCode(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
