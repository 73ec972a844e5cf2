package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				enabled BOOLEAN NOT NULL DEFAULT true,
				trigger VARCHAR(50) NOT NULL,
				trigger_conditions JSONB,
				actions JSONB NOT NULL,
				notify_on_success BOOLEAN NOT NULL DEFAULT false,
				notify_on_failure BOOLEAN NOT NULL DEFAULT false,
				notification_channels JSONB,
				created_by VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_trigger ON workflows(trigger);
			CREATE INDEX idx_workflows_enabled ON workflows(enabled);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);

			CREATE TABLE executions (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL,
				workflow_name VARCHAR(255) NOT NULL,
				trigger VARCHAR(50) NOT NULL,
				trigger_context JSONB,
				action_results JSONB,
				status VARCHAR(50) NOT NULL,
				notification_error TEXT NOT NULL DEFAULT '',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_executions_workflow_id ON executions(workflow_id);
			CREATE INDEX idx_executions_status ON executions(status);
			CREATE INDEX idx_executions_started_at ON executions(started_at);

			CREATE TABLE schedules (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL,
				cron_expression VARCHAR(255) NOT NULL,
				timezone VARCHAR(100) NOT NULL DEFAULT '',
				default_context JSONB,
				enabled BOOLEAN NOT NULL DEFAULT true,
				next_run_at TIMESTAMP WITH TIME ZONE NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_schedules_workflow_id ON schedules(workflow_id);
			CREATE INDEX idx_schedules_next_run_at ON schedules(next_run_at);
			CREATE INDEX idx_schedules_enabled ON schedules(enabled);

			CREATE TABLE templates (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				category VARCHAR(100) NOT NULL DEFAULT '',
				trigger VARCHAR(50) NOT NULL,
				default_conditions JSONB,
				default_actions JSONB NOT NULL,
				public BOOLEAN NOT NULL DEFAULT false,
				usage_count INTEGER NOT NULL DEFAULT 0,
				created_by VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_templates_category ON templates(category);
			CREATE INDEX idx_templates_public ON templates(public);
		`,
	}
}
